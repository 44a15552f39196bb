package oracle

import (
	"testing"

	"remedy/internal/source"
	"remedy/internal/types"
)

func newWorld() (*types.Interner, *source.Interner, *Table) {
	in := types.NewInterner()
	strs := source.NewInterner()
	return in, strs, NewTable(in, strs)
}

func TestRegisterTraitIsIdempotent(t *testing.T) {
	_, _, tbl := newWorld()
	a := tbl.RegisterTrait(PathFrom)
	b := tbl.RegisterTrait(PathFrom)
	if a != b {
		t.Fatalf("same path registered twice returned different IDs: %d vs %d", a, b)
	}
	if tbl.TraitPath(a) != PathFrom {
		t.Fatalf("TraitPath = %q, want %q", tbl.TraitPath(a), PathFrom)
	}
}

func TestCanSelectAndProjection(t *testing.T) {
	in, _, tbl := newWorld()
	b := in.Builtins()
	u64 := in.Intern(types.MakeUint(types.Width64))

	tryFrom := tbl.RegisterTrait(PathTryFrom)
	tbl.AddImpl(b.Int, tryFrom, u64, map[string]types.TypeID{"Error": b.Str})

	ref := TraitRef{Self: b.Int, Trait: tryFrom, Arg: u64}
	if !tbl.CanSelect(ref) {
		t.Fatalf("registered impl should be selectable")
	}
	if tbl.CanSelect(TraitRef{Self: u64, Trait: tryFrom, Arg: b.Int}) {
		t.Fatalf("swapped self/arg must not select")
	}

	errTy, ok := tbl.SelectProjection(ref, "Error")
	if !ok || errTy != b.Str {
		t.Fatalf("Error projection = (%d, %v), want (%d, true)", errTy, ok, b.Str)
	}
	if _, ok := tbl.SelectProjection(ref, "Output"); ok {
		t.Fatalf("absent projection must report false")
	}
}

func TestCoercionSequenceStartsAtSelf(t *testing.T) {
	in, _, tbl := newWorld()
	b := in.Builtins()
	refInt := in.Intern(types.MakeReference(b.Int, types.Immutable))
	refRefInt := in.Intern(types.MakeReference(refInt, types.Mutable))

	seq := tbl.CoercionSequence(refRefInt)
	want := []types.TypeID{refRefInt, refInt, b.Int}
	if len(seq) != len(want) {
		t.Fatalf("sequence length = %d, want %d", len(seq), len(want))
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("seq[%d] = %d, want %d", i, seq[i], want[i])
		}
	}
}

func TestCoercionSequenceFollowsUserDerefs(t *testing.T) {
	in, strs, tbl := newWorld()
	b := in.Builtins()
	str := b.Str
	stringTy := in.InternAdt(strs.Intern(PathString), strs.Intern("String"), nil)
	tbl.AddDeref(stringTy, str)

	refString := in.Intern(types.MakeReference(stringTy, types.Immutable))
	seq := tbl.CoercionSequence(refString)
	want := []types.TypeID{refString, stringTy, str}
	if len(seq) != len(want) {
		t.Fatalf("sequence length = %d, want %d: %v", len(seq), len(want), seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("seq[%d] = %d, want %d", i, seq[i], want[i])
		}
	}
}

func TestCoercionSequenceStopsAtDepthBound(t *testing.T) {
	in, strs, tbl := newWorld()
	a := in.InternAdt(strs.Intern("demo::A"), strs.Intern("A"), nil)
	b := in.InternAdt(strs.Intern("demo::B"), strs.Intern("B"), nil)
	tbl.AddDeref(a, b)
	tbl.AddDeref(b, a)

	seq := tbl.CoercionSequence(a)
	if len(seq) != MaxDerefDepth {
		t.Fatalf("cyclic chain should stop at the cap: len = %d, want %d", len(seq), MaxDerefDepth)
	}
	if seq[0] != a {
		t.Fatalf("sequence must start at the queried type")
	}
}

func TestKnownResolvesOnlyRegisteredItems(t *testing.T) {
	_, strs, tbl := newWorld()
	tbl.RegisterTrait(PathFrom)
	tbl.RegisterTrait(PathBorrow)
	strs.Intern(PathString)

	known := tbl.Known()
	if known.From == NoTraitID {
		t.Fatalf("From was registered and should resolve")
	}
	if known.Borrow == NoTraitID {
		t.Fatalf("Borrow was registered and should resolve")
	}
	if known.TryFrom != NoTraitID {
		t.Fatalf("TryFrom was never registered and must stay absent")
	}
	if known.StringItem == source.NoStringID {
		t.Fatalf("String item path was interned and should resolve")
	}
	if known.ResultItem != source.NoStringID {
		t.Fatalf("Result item path was never interned and must stay absent")
	}

	// Known must not grow the interner as a side effect.
	before := strs.Len()
	_ = tbl.Known()
	if strs.Len() != before {
		t.Fatalf("Known interned strings: %d -> %d", before, strs.Len())
	}
}
