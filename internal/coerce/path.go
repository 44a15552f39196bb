// Package coerce searches for a dereference/reference bridge between an
// actual type and an expected type: strip some layers off the actual type
// via its coercion sequence, then re-borrow to rebuild the expected shape.
package coerce

import (
	"strings"

	"remedy/internal/expr"
	"remedy/internal/oracle"
	"remedy/internal/types"
)

// Path describes a deref/ref bridge. Derefs layers are stripped from the
// actual type following its coercion sequence; Refs are the reference
// layers (outer-to-inner, matching the expected type's own nesting) that
// rebuild the expected type when applied innermost-first.
type Path struct {
	Derefs int
	Refs   []types.Mutability
}

// String renders the source prefix realizing the path: reference operators
// outer-to-inner, then one dereference operator per stripped layer.
func (p Path) String() string {
	var sb strings.Builder
	for _, m := range p.Refs {
		if m == types.Mutable {
			sb.WriteString("&mut ")
		} else {
			sb.WriteString("&")
		}
	}
	sb.WriteString(strings.Repeat("*", p.Derefs))
	return sb.String()
}

// FindPath looks for the shortest deref/ref bridge from actual to expected.
//
// The expected type is peeled of its reference layers, recording the peel
// depth of every intermediate type. The actual type's coercion sequence is
// then scanned in order; the first element that matches a peeled
// intermediate fixes both the number of dereferences (its scan index) and
// the reference layers to rebuild (its peel depth). A single linear scan
// finds the shortest bridge because both sequences shrink monotonically
// toward the match point.
//
// Synthesizing any mutable reference layer is only allowed when the
// originating expression is a mutable place and every reference layer
// stripped from the actual sequence is itself mutable; a mutable borrow
// cannot be created from an immutable place or through an immutable
// intermediate reference.
func FindPath(in *types.Interner, orc oracle.Oracle, expected, actual types.TypeID, place expr.Handle) (Path, bool) {
	if expected == types.NoTypeID || actual == types.NoTypeID {
		return Path{}, false
	}

	depthOf := make(map[types.TypeID]int, 4)
	var refSeq []types.Mutability // outer-to-inner
	cur := expected
	for {
		depthOf[cur] = len(refSeq)
		t, ok := in.Lookup(cur)
		if !ok || t.Kind != types.KindReference {
			break
		}
		refSeq = append(refSeq, t.Mut)
		cur = t.Elem
	}

	seq := orc.CoercionSequence(actual)
	derefs := -1
	refCount := 0
	for i, id := range seq {
		if d, ok := depthOf[id]; ok {
			derefs = i
			refCount = d
			break
		}
	}
	if derefs < 0 {
		return Path{}, false
	}

	refs := append([]types.Mutability(nil), refSeq[:refCount]...)
	if mutabilityGate(in, refs, seq[:derefs], place) {
		return Path{Derefs: derefs, Refs: refs}, true
	}
	return Path{}, false
}

// mutabilityGate accepts paths that synthesize no mutable layer; otherwise
// it requires a mutable place and an all-mutable stripped prefix.
func mutabilityGate(in *types.Interner, refs []types.Mutability, stripped []types.TypeID, place expr.Handle) bool {
	mutable := false
	for _, m := range refs {
		if m == types.Mutable {
			mutable = true
			break
		}
	}
	if !mutable {
		return true
	}
	if place == nil || !place.MutablePlace() {
		return false
	}
	return StrippedLayersMutable(in, stripped)
}

// StrippedLayersMutable reports whether every reference layer in the given
// coercion-sequence prefix is mutable. Non-reference elements (user-defined
// dereference steps) carry no mutability and are skipped.
func StrippedLayersMutable(in *types.Interner, stripped []types.TypeID) bool {
	for _, id := range stripped {
		t, ok := in.Lookup(id)
		if !ok {
			return false
		}
		if t.Kind == types.KindReference && t.Mut != types.Mutable {
			return false
		}
	}
	return true
}
