package oracle

import (
	"remedy/internal/source"
	"remedy/internal/types"
)

// MaxDerefDepth caps coercion sequences. The interface contract already
// requires finite chains; the cap guards against pathological user-defined
// dereference definitions that form a cycle.
const MaxDerefDepth = 32

// Canonical item paths resolved by Known.
const (
	PathFrom      = "core::convert::From"
	PathTryFrom   = "core::convert::TryFrom"
	PathFromStr   = "core::str::FromStr"
	PathToOwned   = "alloc::borrow::ToOwned"
	PathToString  = "alloc::string::ToString"
	PathBorrow    = "core::borrow::Borrow"
	PathBorrowMut = "core::borrow::BorrowMut"
	PathAsRef     = "core::convert::AsRef"
	PathAsMut     = "core::convert::AsMut"
	PathResult    = "core::result::Result"
	PathString    = "alloc::string::String"
)

type implKey struct {
	Self  types.TypeID
	Trait TraitID
	Arg   types.TypeID
}

type projKey struct {
	impl  implKey
	assoc string
}

// Table is an in-memory Oracle backed by explicit registrations. The CLI
// builds one from a scenario file; tests build one by hand. All mutation
// must happen before the table is shared: once built it is read-only and
// safe for concurrent queries.
type Table struct {
	in     *types.Interner
	strs   *source.Interner
	traits map[source.StringID]TraitID
	paths  []source.StringID // TraitID -> path; index 0 reserved
	impls  map[implKey]struct{}
	projs  map[projKey]types.TypeID
	derefs map[types.TypeID]types.TypeID
}

// NewTable creates an empty oracle over the given interners.
func NewTable(in *types.Interner, strs *source.Interner) *Table {
	return &Table{
		in:     in,
		strs:   strs,
		traits: make(map[source.StringID]TraitID),
		paths:  []source.StringID{source.NoStringID},
		impls:  make(map[implKey]struct{}),
		projs:  make(map[projKey]types.TypeID),
		derefs: make(map[types.TypeID]types.TypeID),
	}
}

// RegisterTrait makes the trait at path selectable and returns its ID.
// Registering the same path twice returns the same ID.
func (t *Table) RegisterTrait(path string) TraitID {
	id := t.strs.Intern(path)
	if tid, ok := t.traits[id]; ok {
		return tid
	}
	tid := TraitID(len(t.paths))
	t.paths = append(t.paths, id)
	t.traits[id] = tid
	return tid
}

// TraitPath returns the path a TraitID was registered under.
func (t *Table) TraitPath(id TraitID) string {
	if id == NoTraitID || int(id) >= len(t.paths) {
		return ""
	}
	return t.strs.MustLookup(t.paths[id])
}

// AddImpl records that trait<arg> is implemented for self, with the given
// associated-type projections.
func (t *Table) AddImpl(self types.TypeID, trait TraitID, arg types.TypeID, projections map[string]types.TypeID) {
	key := implKey{Self: self, Trait: trait, Arg: arg}
	t.impls[key] = struct{}{}
	for assoc, ty := range projections {
		t.projs[projKey{impl: key, assoc: assoc}] = ty
	}
}

// AddDeref records a user-defined dereference step from -> to.
func (t *Table) AddDeref(from, to types.TypeID) {
	t.derefs[from] = to
}

// CanSelect reports whether an implementation was registered for ref.
func (t *Table) CanSelect(ref TraitRef) bool {
	if ref.Trait == NoTraitID {
		return false
	}
	_, ok := t.impls[implKey{Self: ref.Self, Trait: ref.Trait, Arg: ref.Arg}]
	return ok
}

// SelectProjection resolves an associated type under ref's implementation.
func (t *Table) SelectProjection(ref TraitRef, assoc string) (types.TypeID, bool) {
	if !t.CanSelect(ref) {
		return types.NoTypeID, false
	}
	ty, ok := t.projs[projKey{impl: implKey{Self: ref.Self, Trait: ref.Trait, Arg: ref.Arg}, assoc: assoc}]
	return ty, ok
}

// CoercionSequence walks successive dereference steps starting at id.
// Reference layers peel to their referent; other types follow a registered
// dereference step. The walk stops at MaxDerefDepth.
func (t *Table) CoercionSequence(id types.TypeID) []types.TypeID {
	seq := make([]types.TypeID, 0, 4)
	cur := id
	for len(seq) < MaxDerefDepth {
		seq = append(seq, cur)
		next, ok := t.derefStep(cur)
		if !ok {
			break
		}
		cur = next
	}
	return seq
}

func (t *Table) derefStep(id types.TypeID) (types.TypeID, bool) {
	tt, ok := t.in.Lookup(id)
	if !ok {
		return types.NoTypeID, false
	}
	if tt.Kind == types.KindReference {
		return tt.Elem, true
	}
	next, ok := t.derefs[id]
	return next, ok
}

// Known resolves the well-known item table from the registered traits.
func (t *Table) Known() KnownItems {
	return KnownItems{
		From:      t.registered(PathFrom),
		TryFrom:   t.registered(PathTryFrom),
		FromStr:   t.registered(PathFromStr),
		ToOwned:   t.registered(PathToOwned),
		ToString:  t.registered(PathToString),
		Borrow:    t.registered(PathBorrow),
		BorrowMut: t.registered(PathBorrowMut),
		AsRef:     t.registered(PathAsRef),
		AsMut:     t.registered(PathAsMut),

		ResultItem: t.itemID(PathResult),
		StringItem: t.itemID(PathString),
	}
}

func (t *Table) registered(path string) TraitID {
	if id, ok := t.strs.LookupID(path); ok {
		if tid, ok := t.traits[id]; ok {
			return tid
		}
	}
	return NoTraitID
}

func (t *Table) itemID(path string) source.StringID {
	if id, ok := t.strs.LookupID(path); ok {
		return id
	}
	return source.NoStringID
}
