package diag

import "fmt"

// Code is a compact numeric identifier with a stable string form and a
// documentation URL. Ranges are grouped by family: 1000 scenario loading,
// 3000 type diagnosis, 4000 I/O.
type Code uint16

const (
	UnknownCode Code = 0

	// Scenario loading
	ScnInfo             Code = 1000
	ScnParseError       Code = 1001
	ScnUnknownType      Code = 1002
	ScnUnknownTrait     Code = 1003
	ScnBadTypeExpr      Code = 1004
	ScnDuplicateAdt     Code = 1005
	ScnBadProjection    Code = 1006
	ScnMissingMismatch  Code = 1007
	ScnDerefCycle       Code = 1008

	// Type diagnosis
	TypInfo            Code = 3000
	TypeMismatch       Code = 3001
	TypMutabilityError Code = 3002

	// I/O
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	ScnInfo:            "Scenario information",
	ScnParseError:      "Scenario file is not valid TOML",
	ScnUnknownType:     "Reference to undeclared type",
	ScnUnknownTrait:    "Reference to unregistered trait",
	ScnBadTypeExpr:     "Malformed type expression",
	ScnDuplicateAdt:    "Duplicate type declaration",
	ScnBadProjection:   "Malformed associated-type projection",
	ScnMissingMismatch: "Scenario declares no mismatches",
	ScnDerefCycle:      "Dereference chain exceeds the depth bound",

	TypInfo:            "Type diagnosis information",
	TypeMismatch:       "mismatched types",
	TypMutabilityError: "mutability mismatch",

	IOLoadFileError: "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// DocURL points at the published explanation for the code.
func (c Code) DocURL() string {
	return "https://remedy-lang.dev/diagnostics/" + c.ID()
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
