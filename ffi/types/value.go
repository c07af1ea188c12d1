package types

// Ownership records whether a value's payload is owned by this
// CanonicalValue (and must eventually be released by it) or merely
// borrowed from another owner. Ownership is never ambiguous: every value
// carries exactly one of these tags.
type Ownership uint8

const (
	Owned Ownership = iota
	Borrowed
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// CompositeHandle identifies the opaque storage behind a
// struct/array/object/callback value; CanonicalValue only ever carries a
// handle plus enough typing information to interpret it. Struct handles
// minted by this package refer to its in-process field store.
type CompositeHandle uint64

// CanonicalValue is the tagged union spec.md §3 describes: a canonical
// type id and its payload. Exactly one payload field is meaningful,
// selected by Kind:
//   - primitive numeric/bool/char kinds: Num (reinterpreted per Kind)
//   - string: Str (+ Ownership)
//   - struct/array/object/callback: Handle (+ Ownership)
//   - void: no payload
type CanonicalValue struct {
	TypeID    string
	Kind      Kind
	Ownership Ownership

	// Num holds the by-value payload for every primitive numeric/bool/char
	// kind. It always carries the widened Go-native representation
	// (bool, int64, uint64, or float64); Kind says how to narrow it back.
	Num any

	// Str holds the payload for KindString: UTF-8 bytes; their ownership
	// is recorded in Ownership.
	Str []byte

	// Handle holds the payload for composite kinds: an opaque index. For
	// struct values minted by this package it indexes the package's own
	// field store (see StructFields).
	Handle CompositeHandle
}

// Void returns the canonical void value.
func Void() CanonicalValue {
	return CanonicalValue{TypeID: "void", Kind: KindVoid}
}

// NewBool constructs an owned bool value.
func NewBool(v bool) CanonicalValue {
	return CanonicalValue{TypeID: "bool", Kind: KindBool, Ownership: Owned, Num: v}
}

// NewInt32 constructs an owned i32 value.
func NewInt32(v int32) CanonicalValue {
	return CanonicalValue{TypeID: "i32", Kind: KindInt32, Ownership: Owned, Num: int64(v)}
}

// NewInt64 constructs an owned i64 value.
func NewInt64(v int64) CanonicalValue {
	return CanonicalValue{TypeID: "i64", Kind: KindInt64, Ownership: Owned, Num: v}
}

// NewUint32 constructs an owned u32 value.
func NewUint32(v uint32) CanonicalValue {
	return CanonicalValue{TypeID: "u32", Kind: KindUint32, Ownership: Owned, Num: uint64(v)}
}

// NewUint64 constructs an owned u64 value.
func NewUint64(v uint64) CanonicalValue {
	return CanonicalValue{TypeID: "u64", Kind: KindUint64, Ownership: Owned, Num: v}
}

// NewFloat32 constructs an owned f32 value.
func NewFloat32(v float32) CanonicalValue {
	return CanonicalValue{TypeID: "f32", Kind: KindFloat32, Ownership: Owned, Num: float64(v)}
}

// NewFloat64 constructs an owned f64 value.
func NewFloat64(v float64) CanonicalValue {
	return CanonicalValue{TypeID: "f64", Kind: KindFloat64, Ownership: Owned, Num: v}
}

// NewOwnedString constructs an owned string value.
func NewOwnedString(s string) CanonicalValue {
	return CanonicalValue{TypeID: "string", Kind: KindString, Ownership: Owned, Str: []byte(s)}
}

// NewBorrowedString constructs a borrowed string value. The caller
// guarantees the backing bytes outlive every use of the returned value.
func NewBorrowedString(s []byte) CanonicalValue {
	return CanonicalValue{TypeID: "string", Kind: KindString, Ownership: Borrowed, Str: s}
}

// NewComposite constructs a value referencing a struct/array/object/
// callback held in the memory bridge under handle.
func NewComposite(typeID string, kind Kind, handle CompositeHandle, ownership Ownership) CanonicalValue {
	return CanonicalValue{TypeID: typeID, Kind: kind, Ownership: ownership, Handle: handle}
}

// AsBool returns the bool payload. Panics if Kind != KindBool; callers
// must validate Kind first (the conversion engine always does).
func (v CanonicalValue) AsBool() bool { return v.Num.(bool) }

// AsInt64 returns the signed integer payload widened to int64.
func (v CanonicalValue) AsInt64() int64 { return v.Num.(int64) }

// AsUint64 returns the unsigned integer payload widened to uint64.
func (v CanonicalValue) AsUint64() uint64 { return v.Num.(uint64) }

// AsFloat64 returns the floating point payload widened to float64.
func (v CanonicalValue) AsFloat64() float64 { return v.Num.(float64) }

// AsString returns the string payload as a Go string (a copy for owned
// values is not forced — callers that need to outlive the value's
// lifetime should copy explicitly).
func (v CanonicalValue) AsString() string { return string(v.Str) }
