package render

import (
	"testing"

	"remedy/internal/source"
	"remedy/internal/types"
)

func TestRenderPrimitives(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	b := in.Builtins()

	cases := []struct {
		name string
		id   types.TypeID
		want string
	}{
		{"bare int", b.Int, "int"},
		{"bare uint", b.Uint, "uint"},
		{"bare float", b.Float, "float"},
		{"str", b.Str, "str"},
		{"i32", in.Intern(types.MakeInt(types.Width32)), "i32"},
		{"u8", in.Intern(types.MakeUint(types.Width8)), "u8"},
		{"f64", in.Intern(types.MakeFloat(types.Width64)), "f64"},
		{"shared ref", in.Intern(types.MakeReference(b.Str, types.Immutable)), "&str"},
		{"mutable ref", in.Intern(types.MakeReference(b.Int, types.Mutable)), "&mut int"},
	}
	for _, tc := range cases {
		if got := Type(in, strs, tc.id); got != tc.want {
			t.Errorf("%s: rendered %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRenderNestedReferences(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	i32 := in.Intern(types.MakeInt(types.Width32))
	inner := in.Intern(types.MakeReference(i32, types.Immutable))
	outer := in.Intern(types.MakeReference(inner, types.Mutable))

	if got := Type(in, strs, outer); got != "&mut &i32" {
		t.Fatalf("rendered %q, want %q", got, "&mut &i32")
	}
}

func TestRenderAdtWithArgs(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	u8 := in.Intern(types.MakeUint(types.Width8))
	errTy := in.InternAdt(strs.Intern("demo::ParseIntError"), strs.Intern("ParseIntError"), nil)
	result := in.InternAdt(strs.Intern("core::result::Result"), strs.Intern("Result"), []types.TypeID{u8, errTy})

	if got := Type(in, strs, result); got != "Result<u8, ParseIntError>" {
		t.Fatalf("rendered %q", got)
	}
	if got := TypeQualified(in, strs, result); got != "core::result::Result<u8, demo::ParseIntError>" {
		t.Fatalf("qualified rendered %q", got)
	}
}

func TestRenderInferPlaceholder(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	ph := in.InternInfer(types.InferInt, strs.Intern("{integer}"))
	if got := Type(in, strs, ph); got != "{integer}" {
		t.Fatalf("rendered %q, want %q", got, "{integer}")
	}
	anon := in.InternInfer(types.InferAny, source.NoStringID)
	if got := Type(in, strs, anon); got != "_" {
		t.Fatalf("rendered %q, want %q", got, "_")
	}
}

func TestPairQualifiesCollidingShortNames(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	name := strs.Intern("Error")
	a := in.InternAdt(strs.Intern("alpha::Error"), name, nil)
	b := in.InternAdt(strs.Intern("beta::Error"), name, nil)

	sa, sb := Pair(in, strs, a, b)
	if sa != "alpha::Error" || sb != "beta::Error" {
		t.Fatalf("colliding names must qualify: got %q / %q", sa, sb)
	}

	// Identical IDs keep the short form even though the names match.
	sa, sb = Pair(in, strs, a, a)
	if sa != "Error" || sb != "Error" {
		t.Fatalf("identical types stay short: got %q / %q", sa, sb)
	}
}

func TestMismatchMessage(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	u64 := in.Intern(types.MakeUint(types.Width64))
	ref := in.Intern(types.MakeReference(u64, types.Mutable))

	got := Mismatch(in, strs, u64, ref)
	want := "expected `u64`, found `&mut u64`"
	if got != want {
		t.Fatalf("Mismatch = %q, want %q", got, want)
	}
}
