// Package oracle defines the trait-resolution surface the diagnosis core
// queries. The core never resolves traits itself: it asks whether a trait
// reference is selectable, projects associated types, and walks coercion
// sequences, all through this interface.
package oracle

import (
	"remedy/internal/source"
	"remedy/internal/types"
)

// TraitID identifies a trait inside an oracle.
type TraitID uint32

// NoTraitID marks an absent trait (a known item the crate graph lacks).
const NoTraitID TraitID = 0

// TraitRef pairs a self type with a trait identity and its substitution.
// Standard conversion traits carry at most one type argument; Arg is
// NoTypeID for nullary traits such as FromStr or ToOwned.
type TraitRef struct {
	Self  types.TypeID
	Trait TraitID
	Arg   types.TypeID
}

// KnownItems is the lookup table of well-known standard-library identities.
// A zero TraitID / StringID means the item is absent from the crate graph.
type KnownItems struct {
	From      TraitID
	TryFrom   TraitID
	FromStr   TraitID
	ToOwned   TraitID
	ToString  TraitID
	Borrow    TraitID
	BorrowMut TraitID
	AsRef     TraitID
	AsMut     TraitID

	// Item identities for well-known types; compared against AdtInfo.Item.
	ResultItem source.StringID
	StringItem source.StringID
}

// Oracle answers trait-resolution and coercion queries over an immutable
// snapshot of type/trait data. Implementations must be safe for concurrent
// read access.
type Oracle interface {
	// CanSelect reports whether ref resolves to an implementation.
	CanSelect(ref TraitRef) bool
	// SelectProjection resolves the associated type assoc under ref's
	// implementation. Absence (trait not selectable, or no such projection)
	// is reported as false, never as an error.
	SelectProjection(ref TraitRef, assoc string) (types.TypeID, bool)
	// CoercionSequence returns the ordered chain of types reachable from id
	// by successive dereference. The first element is always id itself.
	CoercionSequence(id types.TypeID) []types.TypeID
	// Known returns the well-known item table.
	Known() KnownItems
}
