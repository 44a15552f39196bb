package diag

import (
	"remedy/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Fix is one candidate-fix descriptor surfaced with a diagnostic. Kind is
// the stable tag the fix-application layer dispatches on; Detail carries
// kind-specific data (a rendered error type, a deref/ref prefix). Turning a
// descriptor into a concrete source edit is the caller's job.
type Fix struct {
	Kind   string
	Title  string
	Detail string
}

// Diagnostic is the uniform prepared record every diagnosis produces:
// severity, stable code, header message, description notes, and candidate
// fixes in priority order.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
