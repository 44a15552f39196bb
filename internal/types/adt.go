package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"remedy/internal/source"
)

// AdtInfo describes a nominal type instantiation. Item is the fully
// qualified item path (the identity trait resolution keys on), Name the
// short display name, TypeArgs the ordered type arguments.
type AdtInfo struct {
	Item     source.StringID
	Name     source.StringID
	TypeArgs []TypeID
}

// InferInfo captures what was known about an inference placeholder when it
// was created.
type InferInfo struct {
	Class    InferClass
	Snapshot source.StringID
}

// InternAdt returns the TypeID for the given nominal instantiation,
// deduplicating by item identity and type arguments.
func (in *Interner) InternAdt(item, name source.StringID, args []TypeID) TypeID {
	if item == source.NoStringID {
		return NoTypeID
	}
	if id, ok := in.FindAdtInstance(item, args); ok {
		return id
	}
	lenAdts, err := safecast.Conv[uint32](len(in.adts))
	if err != nil {
		panic(fmt.Errorf("len(adts) overflow: %w", err))
	}
	in.adts = append(in.adts, AdtInfo{
		Item:     item,
		Name:     name,
		TypeArgs: slices.Clone(args),
	})
	return in.internRaw(Type{Kind: KindAdt, Payload: lenAdts})
}

// FindAdtInstance returns an ADT TypeID whose item identity and type
// arguments match.
func (in *Interner) FindAdtInstance(item source.StringID, args []TypeID) (TypeID, bool) {
	if in == nil || item == source.NoStringID {
		return NoTypeID, false
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindAdt {
			continue
		}
		info, ok := in.AdtInfo(id)
		if !ok || info == nil {
			continue
		}
		if info.Item != item {
			continue
		}
		if slices.Equal(info.TypeArgs, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

// AdtInfo returns the nominal metadata for id.
func (in *Interner) AdtInfo(id TypeID) (*AdtInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindAdt || int(t.Payload) >= len(in.adts) {
		return nil, false
	}
	return &in.adts[t.Payload], true
}
