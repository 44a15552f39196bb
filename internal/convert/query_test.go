package convert_test

import (
	"testing"

	"remedy/internal/convert"
	"remedy/internal/expr"
	"remedy/internal/oracle"
	"remedy/internal/source"
	"remedy/internal/testkit"
	"remedy/internal/types"
)

type world struct {
	in   *types.Interner
	strs *source.Interner
	tbl  *oracle.Table
}

func newWorld() *world {
	in := types.NewInterner()
	strs := source.NewInterner()
	return &world{in: in, strs: strs, tbl: oracle.NewTable(in, strs)}
}

func (w *world) adt(path, name string, args ...types.TypeID) types.TypeID {
	return w.in.InternAdt(w.strs.Intern(path), w.strs.Intern(name), args)
}

func (w *world) ref(elem types.TypeID, mut types.Mutability) types.TypeID {
	return w.in.Intern(types.MakeReference(elem, mut))
}

func (w *world) candidates(t *testing.T, expected, actual types.TypeID, mutablePlace bool) []convert.Candidate {
	t.Helper()
	out := convert.Candidates(w.in, w.tbl, expected, actual, expr.Fact{Mutable: mutablePlace})
	if err := testkit.CheckCandidateInvariants(out); err != nil {
		t.Fatalf("candidate invariants violated: %v", err)
	}
	return out
}

func kinds(cands []convert.Candidate) []convert.Kind {
	out := make([]convert.Kind, len(cands))
	for i, c := range cands {
		out[i] = c.Kind
	}
	return out
}

func expectKinds(t *testing.T, cands []convert.Candidate, want ...convert.Kind) {
	t.Helper()
	got := kinds(cands)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestNumericPairShortCircuitsToCast(t *testing.T) {
	w := newWorld()
	i64 := w.in.Intern(types.MakeInt(types.Width64))
	u8 := w.in.Intern(types.MakeUint(types.Width8))

	// Even an applicable From impl is shadowed by the cast.
	from := w.tbl.RegisterTrait(oracle.PathFrom)
	w.tbl.AddImpl(i64, from, u8, nil)

	expectKinds(t, w.candidates(t, i64, u8, false), convert.KindAsCast)
}

func TestNumericPlaceholderCountsAsNumeric(t *testing.T) {
	w := newWorld()
	f64 := w.in.Intern(types.MakeFloat(types.Width64))
	placeholder := w.in.InternInfer(types.InferFloat, w.strs.Intern("{float}"))

	expectKinds(t, w.candidates(t, f64, placeholder, false), convert.KindAsCast)
}

func TestFromSuppressesTryFrom(t *testing.T) {
	w := newWorld()
	celsius := w.adt("demo::Celsius", "Celsius")
	fahrenheit := w.adt("demo::Fahrenheit", "Fahrenheit")

	from := w.tbl.RegisterTrait(oracle.PathFrom)
	tryFrom := w.tbl.RegisterTrait(oracle.PathTryFrom)
	errTy := w.adt("demo::ConvError", "ConvError")
	w.tbl.AddImpl(celsius, from, fahrenheit, nil)
	w.tbl.AddImpl(celsius, tryFrom, fahrenheit, map[string]types.TypeID{"Error": errTy})

	expectKinds(t, w.candidates(t, celsius, fahrenheit, false), convert.KindFrom)
}

func TestTryFromIsTheFallibleFallback(t *testing.T) {
	w := newWorld()
	u8 := w.in.Intern(types.MakeUint(types.Width8))
	big := w.adt("demo::BigInt", "BigInt")

	tryFrom := w.tbl.RegisterTrait(oracle.PathTryFrom)
	errTy := w.adt("demo::TryFromBigIntError", "TryFromBigIntError")
	w.tbl.AddImpl(u8, tryFrom, big, map[string]types.TypeID{"Error": errTy})

	cands := w.candidates(t, u8, big, false)
	expectKinds(t, cands, convert.KindTryFrom)
	if cands[0].ErrType != errTy {
		t.Fatalf("ErrType = %d, want %d", cands[0].ErrType, errTy)
	}
}

func TestTryFromWithoutErrorProjectionIsSkipped(t *testing.T) {
	w := newWorld()
	u8 := w.in.Intern(types.MakeUint(types.Width8))
	big := w.adt("demo::BigInt", "BigInt")

	tryFrom := w.tbl.RegisterTrait(oracle.PathTryFrom)
	w.tbl.AddImpl(u8, tryFrom, big, nil)

	expectKinds(t, w.candidates(t, u8, big, false))
}

func TestFromStrProbesIndependentlyOfFrom(t *testing.T) {
	w := newWorld()
	addr := w.adt("demo::Ipv4Addr", "Ipv4Addr")
	refStr := w.ref(w.in.Builtins().Str, types.Immutable)

	from := w.tbl.RegisterTrait(oracle.PathFrom)
	fromStr := w.tbl.RegisterTrait(oracle.PathFromStr)
	errTy := w.adt("demo::AddrParseError", "AddrParseError")
	w.tbl.AddImpl(addr, from, refStr, nil)
	w.tbl.AddImpl(addr, fromStr, types.NoTypeID, map[string]types.TypeID{"Err": errTy})

	cands := w.candidates(t, addr, refStr, false)
	expectKinds(t, cands, convert.KindFrom, convert.KindFromStr)
	if cands[1].ErrType != errTy {
		t.Fatalf("FromStr ErrType = %d, want %d", cands[1].ErrType, errTy)
	}
}

func TestFromStrNeedsAStrTerminatedChain(t *testing.T) {
	w := newWorld()
	addr := w.adt("demo::Ipv4Addr", "Ipv4Addr")
	u8 := w.in.Intern(types.MakeUint(types.Width8))

	fromStr := w.tbl.RegisterTrait(oracle.PathFromStr)
	errTy := w.adt("demo::AddrParseError", "AddrParseError")
	w.tbl.AddImpl(addr, fromStr, types.NoTypeID, map[string]types.TypeID{"Err": errTy})

	// The actual type never dereferences to str, so parsing does not apply.
	expectKinds(t, w.candidates(t, addr, u8, false))
}

func TestToOwnedRequiresMatchingOwnedType(t *testing.T) {
	w := newWorld()
	str := w.in.Builtins().Str
	stringTy := w.adt(oracle.PathString, "String")

	toOwned := w.tbl.RegisterTrait(oracle.PathToOwned)
	w.tbl.AddImpl(str, toOwned, types.NoTypeID, map[string]types.TypeID{"Owned": stringTy})

	expectKinds(t, w.candidates(t, stringTy, str, false), convert.KindToOwned)

	// A different owned type does not satisfy the expectation.
	other := w.adt("demo::PathBuf", "PathBuf")
	expectKinds(t, w.candidates(t, other, str, false))
}

func TestToOwnedSearchesTheDerefChain(t *testing.T) {
	w := newWorld()
	str := w.in.Builtins().Str
	stringTy := w.adt(oracle.PathString, "String")
	refStr := w.ref(str, types.Immutable)

	toOwned := w.tbl.RegisterTrait(oracle.PathToOwned)
	w.tbl.AddImpl(str, toOwned, types.NoTypeID, map[string]types.TypeID{"Owned": stringTy})

	expectKinds(t, w.candidates(t, stringTy, refStr, false), convert.KindToOwned)
}

func TestToStringForNumericActual(t *testing.T) {
	w := newWorld()
	stringTy := w.adt(oracle.PathString, "String")
	i32 := w.in.Intern(types.MakeInt(types.Width32))

	expectKinds(t, w.candidates(t, stringTy, i32, false), convert.KindToString)
}

func TestToStringThroughImpl(t *testing.T) {
	w := newWorld()
	stringTy := w.adt(oracle.PathString, "String")
	token := w.adt("demo::Token", "Token")

	toString := w.tbl.RegisterTrait(oracle.PathToString)
	w.tbl.AddImpl(token, toString, types.NoTypeID, nil)

	expectKinds(t, w.candidates(t, stringTy, token, false), convert.KindToString)
}

func TestBorrowAndAsRefCoexist(t *testing.T) {
	w := newWorld()
	str := w.in.Builtins().Str
	stringTy := w.adt(oracle.PathString, "String")
	refStr := w.ref(str, types.Immutable)

	borrow := w.tbl.RegisterTrait(oracle.PathBorrow)
	asRef := w.tbl.RegisterTrait(oracle.PathAsRef)
	w.tbl.AddImpl(stringTy, borrow, str, nil)
	w.tbl.AddImpl(stringTy, asRef, str, nil)

	// The owned-string special case also fires for a &str expectation.
	expectKinds(t, w.candidates(t, refStr, stringTy, false),
		convert.KindBorrow, convert.KindAsRef, convert.KindToImmutableStr)
}

func TestChangeRefToMutable(t *testing.T) {
	w := newWorld()
	i32 := w.in.Intern(types.MakeInt(types.Width32))
	expected := w.ref(i32, types.Mutable)
	actual := w.ref(i32, types.Immutable)

	expectKinds(t, w.candidates(t, expected, actual, false), convert.KindChangeRefToMutable)
}

func TestBorrowMutRequiresMutablePlace(t *testing.T) {
	w := newWorld()
	vec := w.adt("demo::Buffer", "Buffer")
	bytes := w.adt("demo::Bytes", "Bytes")
	expected := w.ref(bytes, types.Mutable)

	borrowMut := w.tbl.RegisterTrait(oracle.PathBorrowMut)
	asMut := w.tbl.RegisterTrait(oracle.PathAsMut)
	w.tbl.AddImpl(vec, borrowMut, bytes, nil)
	w.tbl.AddImpl(vec, asMut, bytes, nil)

	expectKinds(t, w.candidates(t, expected, vec, false))
	expectKinds(t, w.candidates(t, expected, vec, true),
		convert.KindBorrowMut, convert.KindAsMut)
}

func TestBorrowMutRejectsImmutableChainLayers(t *testing.T) {
	w := newWorld()
	vec := w.adt("demo::Buffer", "Buffer")
	bytes := w.adt("demo::Bytes", "Bytes")
	expected := w.ref(bytes, types.Mutable)
	actual := w.ref(vec, types.Immutable)

	borrowMut := w.tbl.RegisterTrait(oracle.PathBorrowMut)
	w.tbl.AddImpl(vec, borrowMut, bytes, nil)

	// Reaching the impl strips an immutable reference layer; a mutable
	// borrow cannot be taken through it.
	expectKinds(t, w.candidates(t, expected, actual, true), convert.KindChangeRefToMutable)
}

func TestResultWrappedConversions(t *testing.T) {
	w := newWorld()
	u8 := w.in.Intern(types.MakeUint(types.Width8))
	parseErr := w.adt("demo::ParseIntError", "ParseIntError")
	result := w.adt(oracle.PathResult, "Result", u8, parseErr)
	refStr := w.ref(w.in.Builtins().Str, types.Immutable)

	tryFrom := w.tbl.RegisterTrait(oracle.PathTryFrom)
	fromStr := w.tbl.RegisterTrait(oracle.PathFromStr)
	w.tbl.AddImpl(u8, tryFrom, refStr, map[string]types.TypeID{"Error": parseErr})
	w.tbl.AddImpl(u8, fromStr, types.NoTypeID, map[string]types.TypeID{"Err": parseErr})

	cands := w.candidates(t, result, refStr, false)
	expectKinds(t, cands, convert.KindUnpackTryFrom, convert.KindUnpackFromStr)
	for _, c := range cands {
		if c.ErrType != parseErr {
			t.Fatalf("%v ErrType = %d, want %d", c.Kind, c.ErrType, parseErr)
		}
	}
}

func TestResultUnpackRequiresMatchingError(t *testing.T) {
	w := newWorld()
	u8 := w.in.Intern(types.MakeUint(types.Width8))
	parseErr := w.adt("demo::ParseIntError", "ParseIntError")
	otherErr := w.adt("demo::IoError", "IoError")
	result := w.adt(oracle.PathResult, "Result", u8, otherErr)
	refStr := w.ref(w.in.Builtins().Str, types.Immutable)

	fromStr := w.tbl.RegisterTrait(oracle.PathFromStr)
	w.tbl.AddImpl(u8, fromStr, types.NoTypeID, map[string]types.TypeID{"Err": parseErr})

	expectKinds(t, w.candidates(t, result, refStr, false))
}

func TestOwnedStringToStrSlice(t *testing.T) {
	w := newWorld()
	str := w.in.Builtins().Str
	stringTy := w.adt(oracle.PathString, "String")

	expectKinds(t, w.candidates(t, w.ref(str, types.Immutable), stringTy, false),
		convert.KindToImmutableStr)
	expectKinds(t, w.candidates(t, w.ref(str, types.Mutable), stringTy, true),
		convert.KindToMutableStr)
}

func TestAnonymousTypesAreExcluded(t *testing.T) {
	w := newWorld()
	anon := w.in.InternUnknown()
	i32 := w.in.Intern(types.MakeInt(types.Width32))

	if got := w.candidates(t, anon, i32, true); len(got) != 0 {
		t.Fatalf("anonymous expected type produced candidates: %v", kinds(got))
	}
	if got := w.candidates(t, i32, anon, true); len(got) != 0 {
		t.Fatalf("anonymous actual type produced candidates: %v", kinds(got))
	}
}
