package types

// Kind is the closed enumeration of canonical type kinds every value and
// descriptor in the FFI core is tagged with. It never grows at runtime —
// new shapes are expressed as Descriptors of an existing Kind (e.g. a new
// struct layout is Kind Struct with its own field list), not as new Kinds.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindChar
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindPointer
	KindStruct
	KindArray
	KindObject
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindInt16:
		return "int16"
	case KindUint16:
		return "uint16"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// IntrinsicSize returns the byte size of a primitive kind, or 0 for void
// and every composite kind (their size lives on the registered Descriptor
// instead, since it depends on fields/elements).
func (k Kind) IntrinsicSize() int {
	switch k {
	case KindBool, KindChar, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	case KindPointer:
		return 8
	default:
		return 0
	}
}

// IsPrimitive reports whether k is a primitive, by-value kind. Pointer is
// excluded alongside the composite kinds: like them, its payload is an
// opaque handle to state the holder doesn't own outright.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindStruct, KindArray, KindObject, KindCallback, KindPointer:
		return false
	default:
		return true
	}
}

// IsInteger reports whether k is one of the signed or unsigned integer
// kinds (not bool/char, which are distinct kinds despite being byte-sized).
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt8, KindUint8, KindInt16, KindUint16, KindInt32, KindUint32, KindInt64, KindUint64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether an integer kind is signed. Undefined for
// non-integer kinds.
func (k Kind) IsSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}
