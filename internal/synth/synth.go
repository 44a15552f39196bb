// Package synth orchestrates a full mismatch diagnosis: it runs the
// conversion-trait query, independently searches for a deref/ref bridge,
// and packages the combined candidate list with a rendered explanation.
// No candidate is selected here; the presentation layer decides how many
// to offer.
package synth

import (
	"fmt"

	"remedy/internal/coerce"
	"remedy/internal/convert"
	"remedy/internal/diag"
	"remedy/internal/expr"
	"remedy/internal/oracle"
	"remedy/internal/render"
	"remedy/internal/source"
	"remedy/internal/types"
)

// Diagnosis is the outcome of one fix-synthesis call. Candidates may
// legitimately be empty; the mismatch itself is always explained.
type Diagnosis struct {
	Expected   types.TypeID
	Actual     types.TypeID
	Header     string
	Detail     string
	Candidates []convert.Candidate
}

// Synthesizer runs diagnoses against one oracle snapshot. It holds no
// mutable state and is safe for concurrent use as long as the oracle is.
type Synthesizer struct {
	In   *types.Interner
	Strs *source.Interner
	Orc  oracle.Oracle
}

func New(in *types.Interner, strs *source.Interner, orc oracle.Oracle) *Synthesizer {
	return &Synthesizer{In: in, Strs: strs, Orc: orc}
}

// Diagnose explains why actual does not satisfy expected and collects every
// applicable conversion candidate in priority order, finishing with the
// deref/ref bridge when one exists.
func (s *Synthesizer) Diagnose(expected, actual types.TypeID, place expr.Handle) Diagnosis {
	cands := convert.Candidates(s.In, s.Orc, expected, actual, place)
	if path, ok := coerce.FindPath(s.In, s.Orc, expected, actual, place); ok {
		cands = append(cands, convert.Candidate{Kind: convert.KindDerefRef, Path: path})
	}
	return Diagnosis{
		Expected:   expected,
		Actual:     actual,
		Header:     diag.TypeMismatch.Title(),
		Detail:     render.Mismatch(s.In, s.Strs, expected, actual),
		Candidates: cands,
	}
}

// Prepare turns a diagnosis into the uniform diagnostic record: severity,
// code, header, description note, and one fix descriptor per candidate.
func (s *Synthesizer) Prepare(d Diagnosis, primary source.Span) diag.Diagnostic {
	out := diag.NewError(diag.TypeMismatch, primary, d.Header)
	out = out.WithNote(primary, d.Detail)
	for _, c := range d.Candidates {
		out = out.WithFix(s.describe(d, c))
	}
	return out
}

// describe labels a candidate for presentation. Kind stays the stable tag
// the fix-application layer dispatches on.
func (s *Synthesizer) describe(d Diagnosis, c convert.Candidate) diag.Fix {
	expected := render.Type(s.In, s.Strs, d.Expected)
	fix := diag.Fix{Kind: c.Kind.String()}
	switch c.Kind {
	case convert.KindAsCast:
		fix.Title = fmt.Sprintf("convert to `%s` with an `as` cast", expected)
	case convert.KindFrom:
		fix.Title = fmt.Sprintf("convert with `%s::from`", expected)
	case convert.KindTryFrom:
		fix.Title = fmt.Sprintf("convert with `%s::try_from`", expected)
		fix.Detail = render.Type(s.In, s.Strs, c.ErrType)
	case convert.KindFromStr:
		fix.Title = fmt.Sprintf("parse with `%s::from_str`", expected)
		fix.Detail = render.Type(s.In, s.Strs, c.ErrType)
	case convert.KindToOwned:
		fix.Title = "clone with `.to_owned()`"
	case convert.KindToString:
		fix.Title = "convert with `.to_string()`"
	case convert.KindBorrow:
		fix.Title = "borrow with `.borrow()`"
	case convert.KindAsRef:
		fix.Title = "borrow with `.as_ref()`"
	case convert.KindChangeRefToMutable:
		fix.Title = "change the reference to be mutable"
	case convert.KindBorrowMut:
		fix.Title = "borrow mutably with `.borrow_mut()`"
	case convert.KindAsMut:
		fix.Title = "borrow mutably with `.as_mut()`"
	case convert.KindUnpackTryFrom:
		fix.Title = "convert with `try_from`, keeping the `Result`"
		fix.Detail = render.Type(s.In, s.Strs, c.ErrType)
	case convert.KindUnpackFromStr:
		fix.Title = "parse with `from_str`, keeping the `Result`"
		fix.Detail = render.Type(s.In, s.Strs, c.ErrType)
	case convert.KindToImmutableStr:
		fix.Title = "borrow as `&str` with `.as_str()`"
	case convert.KindToMutableStr:
		fix.Title = "borrow as `&mut str` with `.as_mut_str()`"
	case convert.KindDerefRef:
		fix.Title = fmt.Sprintf("adjust with `%s`", c.Path.String())
		fix.Detail = c.Path.String()
	default:
		fix.Title = c.Kind.String()
	}
	return fix
}
