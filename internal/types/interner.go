package types

import (
	"fmt"

	"fortio.org/safecast"

	"remedy/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Str     TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Interning makes type equivalence a TypeID comparison: identical structures
// share an ID, while every inference placeholder and anonymous type gets a
// fresh one.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	adts     []AdtInfo
	infers   []InferInfo
	unknowns uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.adts = append(in.adts, AdtInfo{})     // reserve 0 as invalid sentinel
	in.infers = append(in.infers, InferInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// IsNumeric reports whether id is a numeric primitive or an unresolved
// integer/float inference placeholder.
func (in *Interner) IsNumeric(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindInt, KindUint, KindFloat:
		return true
	case KindInfer:
		info, ok := in.InferInfo(id)
		return ok && (info.Class == InferInt || info.Class == InferFloat)
	default:
		return false
	}
}

// InternUnknown creates a fresh anonymous type. Anonymous types never compare
// equal to each other, so each call produces a distinct TypeID.
func (in *Interner) InternUnknown() TypeID {
	in.unknowns++
	return in.internRaw(Type{Kind: KindUnknown, Payload: in.unknowns})
}

// InternInfer creates a fresh inference placeholder. The snapshot is the
// rendered form captured at creation time; the variable's identity may later
// narrow, the snapshot does not.
func (in *Interner) InternInfer(class InferClass, snapshot source.StringID) TypeID {
	lenInfers, err := safecast.Conv[uint32](len(in.infers))
	if err != nil {
		panic(fmt.Errorf("len(infers) overflow: %w", err))
	}
	in.infers = append(in.infers, InferInfo{Class: class, Snapshot: snapshot})
	return in.internRaw(Type{Kind: KindInfer, Payload: lenInfers})
}

// InferInfo returns the inference metadata for id.
func (in *Interner) InferInfo(id TypeID) (*InferInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindInfer || int(t.Payload) >= len(in.infers) {
		return nil, false
	}
	return &in.infers[t.Payload], true
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Width   Width
	Mut     Mutability
	Payload uint32
}
