package types

import (
	"sync"

	"github.com/obinexus/libpolycall/internal/typeutil"
)

// structValueStore holds the field data behind composite struct handles
// minted by this package. It is an in-process map kept here, not in the
// memory bridge, so that struct-to-struct conversion and its tests work
// without importing ffi/memory (C1 must not depend on C2).
type structValueStore struct {
	mu     sync.Mutex
	nextID uint64
	values map[CompositeHandle]map[string]CanonicalValue
}

var structFieldCache = &structValueStore{
	values: make(map[CompositeHandle]map[string]CanonicalValue),
}

func (s *structValueStore) store(fields map[string]CanonicalValue) CompositeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	h := CompositeHandle(s.nextID)
	s.values[h] = fields
	return h
}

func (s *structValueStore) load(h CompositeHandle) (map[string]CanonicalValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.values[h]
	return fields, ok
}

// NewStructValue registers a field map under a fresh composite handle and
// returns the struct-typed CanonicalValue referencing it. Used by callers
// constructing struct inputs for the conversion engine (tests and the
// bridge adapters alike).
func NewStructValue(typeID string, fields map[string]CanonicalValue) CanonicalValue {
	h := structFieldCache.store(fields)
	return CanonicalValue{TypeID: typeID, Kind: KindStruct, Ownership: Owned, Handle: h}
}

// StructFields returns the field map stored behind a struct value's
// handle, if any.
func StructFields(v CanonicalValue) (map[string]CanonicalValue, bool) {
	return structFieldCache.load(v.Handle)
}

// NewStructValueFromNative builds a struct CanonicalValue from a
// dynamically-typed field map the way a bridge adapter receives one
// from a host language with no static type system (a decoded JSON
// object, a Python dict, a JS object). Fields are decoded against
// desc's declared primitive kinds using typeutil's safe assertions, so
// a field the host language sent as the "wrong" numeric type (a JSON
// float64 where a struct declares an int32 field, for instance) is
// still accepted rather than panicking on a failed type assertion.
// Only fields of type bool, i32, i64, f32, f64 and string are decoded;
// a field of any other type id is rejected with InvalidParameterError.
// A missing optional field is stored as a void-kind placeholder that
// carries the field's type id (unlike convertStruct, which fills in a
// typed zero value); a missing required field fails.
func NewStructValueFromNative(desc *Descriptor, raw map[string]any) (CanonicalValue, error) {
	out := make(map[string]CanonicalValue, len(desc.Fields))
	for _, f := range desc.Fields {
		rv, present := raw[f.Name]
		if !present {
			if f.Optional {
				out[f.Name] = CanonicalValue{TypeID: f.TypeID, Kind: KindVoid}
				continue
			}
			return CanonicalValue{}, &RequiredFieldMissingError{StructID: desc.ID, Field: f.Name}
		}

		cv, err := nativeFieldToCanonical(f, rv)
		if err != nil {
			return CanonicalValue{}, err
		}
		out[f.Name] = cv
	}
	return NewStructValue(desc.ID, out), nil
}

func nativeFieldToCanonical(f FieldDescriptor, rv any) (CanonicalValue, error) {
	switch {
	case f.TypeID == "bool":
		b, ok := typeutil.SafeBool(rv)
		if !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected bool"}
		}
		return NewBool(b), nil
	case f.TypeID == "i32":
		n, ok := typeutil.SafeInt(rv)
		if !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected integer"}
		}
		return NewInt32(int32(n)), nil
	case f.TypeID == "i64":
		n, ok := typeutil.SafeInt(rv)
		if !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected integer"}
		}
		return NewInt64(int64(n)), nil
	case f.TypeID == "f32":
		n, ok := typeutil.SafeFloat64(rv)
		if !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected float"}
		}
		return NewFloat32(float32(n)), nil
	case f.TypeID == "f64":
		n, ok := typeutil.SafeFloat64(rv)
		if !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected float"}
		}
		return NewFloat64(n), nil
	case f.TypeID == "string":
		s, ok := typeutil.SafeString(rv)
		if !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected string"}
		}
		return NewOwnedString(s), nil
	default:
		if _, ok := typeutil.SafeMapStringAny(rv); !ok {
			return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": expected object"}
		}
		return CanonicalValue{}, &InvalidParameterError{Reason: "field " + f.Name + ": nested struct decoding requires a registered descriptor for " + f.TypeID}
	}
}
