// Package expr models the originating expression of a type mismatch as an
// opaque, non-owning handle. The diagnosis core never mutates or retains the
// handle; it only asks for the expression's span and whether the expression
// is a mutable place.
package expr

import "remedy/internal/source"

// Handle is the caller-owned view of the mismatching expression.
type Handle interface {
	// Span locates the expression for diagnostics.
	Span() source.Span
	// MutablePlace reports whether the expression denotes a place that may
	// be mutably borrowed.
	MutablePlace() bool
}

// Fact is a plain-data Handle for callers that already computed the facts
// (scenario files, tests).
type Fact struct {
	At      source.Span
	Mutable bool
}

func (f Fact) Span() source.Span {
	return f.At
}

func (f Fact) MutablePlace() bool {
	return f.Mutable
}
