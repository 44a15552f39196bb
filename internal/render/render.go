// Package render pretty-prints types for diagnostics. Types render with
// short names by default; when the two sides of a mismatch would collide on
// their short forms, both are rendered with fully qualified item paths.
package render

import (
	"fmt"
	"strings"

	"remedy/internal/source"
	"remedy/internal/types"
)

// Type renders a type with short display names.
func Type(in *types.Interner, strs *source.Interner, id types.TypeID) string {
	return renderType(in, strs, id, false)
}

// TypeQualified renders a type with fully qualified item paths.
func TypeQualified(in *types.Interner, strs *source.Interner, id types.TypeID) string {
	return renderType(in, strs, id, true)
}

// Pair renders two types for side-by-side display. When their short forms
// collide but the types differ, both are qualified so the reader can tell
// them apart.
func Pair(in *types.Interner, strs *source.Interner, a, b types.TypeID) (string, string) {
	sa := renderType(in, strs, a, false)
	sb := renderType(in, strs, b, false)
	if sa == sb && a != b {
		return renderType(in, strs, a, true), renderType(in, strs, b, true)
	}
	return sa, sb
}

// Mismatch formats the canonical mismatch explanation.
func Mismatch(in *types.Interner, strs *source.Interner, expected, actual types.TypeID) string {
	e, a := Pair(in, strs, expected, actual)
	return fmt.Sprintf("expected `%s`, found `%s`", e, a)
}

func renderType(in *types.Interner, strs *source.Interner, id types.TypeID, qualified bool) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "{invalid}"
	}
	switch t.Kind {
	case types.KindInt:
		return numeric("int", "i", t.Width)
	case types.KindUint:
		return numeric("uint", "u", t.Width)
	case types.KindFloat:
		return numeric("float", "f", t.Width)
	case types.KindStr:
		return "str"
	case types.KindReference:
		inner := renderType(in, strs, t.Elem, qualified)
		if t.Mut == types.Mutable {
			return "&mut " + inner
		}
		return "&" + inner
	case types.KindAdt:
		return renderAdt(in, strs, id, qualified)
	case types.KindInfer:
		if info, ok := in.InferInfo(id); ok && info.Snapshot != source.NoStringID {
			return strs.MustLookup(info.Snapshot)
		}
		return "_"
	case types.KindUnknown:
		return "{unknown}"
	default:
		return "{invalid}"
	}
}

func renderAdt(in *types.Interner, strs *source.Interner, id types.TypeID, qualified bool) string {
	info, ok := in.AdtInfo(id)
	if !ok {
		return "{invalid}"
	}
	name := strs.MustLookup(info.Name)
	if qualified {
		name = strs.MustLookup(info.Item)
	}
	if len(info.TypeArgs) == 0 {
		return name
	}
	args := make([]string, len(info.TypeArgs))
	for i, arg := range info.TypeArgs {
		args[i] = renderType(in, strs, arg, qualified)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func numeric(bare, prefix string, w types.Width) string {
	if w == types.WidthAny {
		return bare
	}
	return fmt.Sprintf("%s%d", prefix, w)
}
