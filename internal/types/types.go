package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindUint
	KindFloat
	KindStr
	KindReference
	KindAdt
	KindInfer
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindReference:
		return "reference"
	case KindAdt:
		return "adt"
	case KindInfer:
		return "infer"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Mutability distinguishes &T from &mut T. A mutable reference satisfies an
// immutable requirement's shape only through an explicit conversion, never
// implicitly.
type Mutability uint8

const (
	Immutable Mutability = iota
	Mutable
)

func (m Mutability) String() string {
	if m == Mutable {
		return "mutable"
	}
	return "immutable"
}

// InferClass narrows what an inference placeholder may resolve to.
type InferClass uint8

const (
	InferAny InferClass = iota
	InferInt
	InferFloat
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID     // referent for references
	Width   Width      // for numeric primitives
	Mut     Mutability // for references
	Payload uint32     // AdtInfo / InferInfo index
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width (WidthAny for the
// unsuffixed integer type).
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeReference describes &T or &mut T depending on mut.
func MakeReference(elem TypeID, mut Mutability) Type {
	return Type{Kind: KindReference, Elem: elem, Mut: mut}
}
