package convert

import (
	"fmt"

	"remedy/internal/coerce"
	"remedy/internal/types"
)

// Kind tags one way to reconcile a type mismatch. The order of declaration
// mirrors the fixed priority order candidates are discovered in.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindAsCast converts between numeric types with a cast expression.
	KindAsCast
	// KindFrom converts via the From trait.
	KindFrom
	// KindTryFrom converts via TryFrom; the candidate carries the
	// associated Error type.
	KindTryFrom
	// KindFromStr parses via FromStr; carries the associated Err type.
	KindFromStr
	// KindToOwned clones into the owned counterpart via ToOwned.
	KindToOwned
	// KindToString renders via ToString.
	KindToString
	// KindBorrow borrows the expected referent via Borrow.
	KindBorrow
	// KindAsRef borrows the expected referent via AsRef.
	KindAsRef
	// KindChangeRefToMutable rewrites an immutable reference into a mutable
	// one; a syntactic fix, not a trait-based conversion.
	KindChangeRefToMutable
	// KindBorrowMut mutably borrows via BorrowMut.
	KindBorrowMut
	// KindAsMut mutably borrows via AsMut.
	KindAsMut
	// KindUnpackTryFrom converts via TryFrom and leaves the Result
	// unwrapped into the expected Result type.
	KindUnpackTryFrom
	// KindUnpackFromStr parses via FromStr into the expected Result type.
	KindUnpackFromStr
	// KindToImmutableStr converts an owned string to &str.
	KindToImmutableStr
	// KindToMutableStr converts an owned string to &mut str.
	KindToMutableStr
	// KindDerefRef bridges with dereference and reference steps.
	KindDerefRef
)

func (k Kind) String() string {
	switch k {
	case KindAsCast:
		return "as-cast"
	case KindFrom:
		return "from"
	case KindTryFrom:
		return "try-from"
	case KindFromStr:
		return "from-str"
	case KindToOwned:
		return "to-owned"
	case KindToString:
		return "to-string"
	case KindBorrow:
		return "borrow"
	case KindAsRef:
		return "as-ref"
	case KindChangeRefToMutable:
		return "change-ref-to-mutable"
	case KindBorrowMut:
		return "borrow-mut"
	case KindAsMut:
		return "as-mut"
	case KindUnpackTryFrom:
		return "unpack-try-from"
	case KindUnpackFromStr:
		return "unpack-from-str"
	case KindToImmutableStr:
		return "to-immutable-str"
	case KindToMutableStr:
		return "to-mutable-str"
	case KindDerefRef:
		return "deref-ref"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Candidate is one tagged fix descriptor. ErrType is set for the TryFrom
// and FromStr forms; Path is set for KindDerefRef.
type Candidate struct {
	Kind    Kind
	ErrType types.TypeID
	Path    coerce.Path
}
