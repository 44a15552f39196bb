// Package convert probes the trait oracle for standard conversions bridging
// an actual type to an expected type. Checks run in a fixed priority order;
// they are not mutually exclusive, so several candidates may be emitted for
// one mismatch.
package convert

import (
	"remedy/internal/coerce"
	"remedy/internal/expr"
	"remedy/internal/oracle"
	"remedy/internal/source"
	"remedy/internal/types"
)

// Candidates returns the applicable conversion candidates in discovery
// order. Duplicates are not suppressed: independently valid impls (say,
// both Borrow and AsRef) legitimately coexist.
//
// A numeric pair short-circuits to a single cast candidate: numeric
// coercion dominates every trait-based conversion. Anonymous types are
// excluded entirely.
func Candidates(in *types.Interner, orc oracle.Oracle, expected, actual types.TypeID, place expr.Handle) []Candidate {
	expT, ok := in.Lookup(expected)
	if !ok {
		return nil
	}
	actT, ok := in.Lookup(actual)
	if !ok {
		return nil
	}
	if expT.Kind == types.KindUnknown || actT.Kind == types.KindUnknown {
		return nil
	}

	if in.IsNumeric(expected) && in.IsNumeric(actual) {
		return []Candidate{{Kind: KindAsCast}}
	}

	known := orc.Known()
	actualSeq := orc.CoercionSequence(actual)
	var out []Candidate

	// From, with TryFrom as the fallible fallback. TryFrom is only probed
	// when From did not select.
	if canSelect(orc, expected, known.From, actual) {
		out = append(out, Candidate{Kind: KindFrom})
	} else if errTy, ok := project(orc, expected, known.TryFrom, actual, "Error"); ok {
		out = append(out, Candidate{Kind: KindTryFrom, ErrType: errTy})
	}

	// FromStr is probed independently of From/TryFrom: the traits predate
	// each other and impls for both commonly coexist.
	if endsAtStr(in, actualSeq) {
		if errTy, ok := project(orc, expected, known.FromStr, types.NoTypeID, "Err"); ok {
			out = append(out, Candidate{Kind: KindFromStr, ErrType: errTy})
		}
	}

	// ToOwned, searched through the deref chain; the projected Owned type
	// must be the expected type itself.
	if ref, _, ok := selectWithDerefs(orc, actualSeq, known.ToOwned, types.NoTypeID); ok {
		if owned, ok := orc.SelectProjection(ref, "Owned"); ok && owned == expected {
			out = append(out, Candidate{Kind: KindToOwned})
		}
	}

	// ToString when the expected type is the owned string type.
	if isStringAdt(in, known, expected) {
		_, _, selectable := selectWithDerefs(orc, actualSeq, known.ToString, types.NoTypeID)
		if selectable || in.IsNumeric(actual) {
			out = append(out, Candidate{Kind: KindToString})
		}
	}

	// Reference-target conversions.
	if expT.Kind == types.KindReference {
		out = append(out, referenceTarget(in, orc, known, expT, actT, actualSeq, place)...)
	}

	// Result-wrapped target: the conversion error type must line up with
	// the expected Err argument.
	if okT, errT, isResult := resultArgs(in, known, expected); isResult {
		if e, ok := project(orc, okT, known.TryFrom, actual, "Error"); ok && e == errT {
			out = append(out, Candidate{Kind: KindUnpackTryFrom, ErrType: e})
		}
		if endsAtStr(in, actualSeq) {
			if e, ok := project(orc, okT, known.FromStr, types.NoTypeID, "Err"); ok && e == errT {
				out = append(out, Candidate{Kind: KindUnpackFromStr, ErrType: e})
			}
		}
	}

	// Owned string to string slice.
	if isStringAdt(in, known, actual) && expT.Kind == types.KindReference {
		if elem, ok := in.Lookup(expT.Elem); ok && elem.Kind == types.KindStr {
			if expT.Mut == types.Immutable {
				out = append(out, Candidate{Kind: KindToImmutableStr})
			} else {
				out = append(out, Candidate{Kind: KindToMutableStr})
			}
		}
	}

	return out
}

func referenceTarget(in *types.Interner, orc oracle.Oracle, known oracle.KnownItems, expT, actT types.Type, actualSeq []types.TypeID, place expr.Handle) []Candidate {
	var out []Candidate
	referent := expT.Elem
	if expT.Mut == types.Immutable {
		if _, _, ok := selectWithDerefs(orc, actualSeq, known.Borrow, referent); ok {
			out = append(out, Candidate{Kind: KindBorrow})
		}
		if _, _, ok := selectWithDerefs(orc, actualSeq, known.AsRef, referent); ok {
			out = append(out, Candidate{Kind: KindAsRef})
		}
		return out
	}
	if actT.Kind == types.KindReference && actT.Mut == types.Immutable {
		return append(out, Candidate{Kind: KindChangeRefToMutable})
	}
	if place == nil || !place.MutablePlace() {
		return out
	}
	if _, idx, ok := selectWithDerefs(orc, actualSeq, known.BorrowMut, referent); ok && coerce.StrippedLayersMutable(in, actualSeq[:idx]) {
		out = append(out, Candidate{Kind: KindBorrowMut})
	}
	if _, idx, ok := selectWithDerefs(orc, actualSeq, known.AsMut, referent); ok && coerce.StrippedLayersMutable(in, actualSeq[:idx]) {
		out = append(out, Candidate{Kind: KindAsMut})
	}
	return out
}

func canSelect(orc oracle.Oracle, self types.TypeID, trait oracle.TraitID, arg types.TypeID) bool {
	if trait == oracle.NoTraitID {
		return false
	}
	return orc.CanSelect(oracle.TraitRef{Self: self, Trait: trait, Arg: arg})
}

// project resolves an associated type; a selectable trait whose projection
// is absent counts as inapplicable.
func project(orc oracle.Oracle, self types.TypeID, trait oracle.TraitID, arg types.TypeID, assoc string) (types.TypeID, bool) {
	if trait == oracle.NoTraitID {
		return types.NoTypeID, false
	}
	return orc.SelectProjection(oracle.TraitRef{Self: self, Trait: trait, Arg: arg}, assoc)
}

// selectWithDerefs probes each element of the coercion sequence as the self
// type and returns the first selectable reference with its sequence index.
func selectWithDerefs(orc oracle.Oracle, seq []types.TypeID, trait oracle.TraitID, arg types.TypeID) (oracle.TraitRef, int, bool) {
	if trait == oracle.NoTraitID {
		return oracle.TraitRef{}, 0, false
	}
	for i, id := range seq {
		ref := oracle.TraitRef{Self: id, Trait: trait, Arg: arg}
		if orc.CanSelect(ref) {
			return ref, i, true
		}
	}
	return oracle.TraitRef{}, 0, false
}

func endsAtStr(in *types.Interner, seq []types.TypeID) bool {
	if len(seq) == 0 {
		return false
	}
	t, ok := in.Lookup(seq[len(seq)-1])
	return ok && t.Kind == types.KindStr
}

func isStringAdt(in *types.Interner, known oracle.KnownItems, id types.TypeID) bool {
	if known.StringItem == source.NoStringID {
		return false
	}
	info, ok := in.AdtInfo(id)
	return ok && info.Item == known.StringItem && len(info.TypeArgs) == 0
}

func resultArgs(in *types.Interner, known oracle.KnownItems, id types.TypeID) (okT, errT types.TypeID, isResult bool) {
	if known.ResultItem == source.NoStringID {
		return types.NoTypeID, types.NoTypeID, false
	}
	info, ok := in.AdtInfo(id)
	if !ok || info.Item != known.ResultItem || len(info.TypeArgs) != 2 {
		return types.NoTypeID, types.NoTypeID, false
	}
	return info.TypeArgs[0], info.TypeArgs[1], true
}
