package types

// VariableLength is the sentinel ElementCount for an array descriptor
// whose length is determined at call time rather than fixed at
// registration (spec: "element id, element count or sentinel for
// variable length").
const VariableLength = -1

// FieldDescriptor describes one field of a registered struct type.
type FieldDescriptor struct {
	Name     string
	TypeID   string
	Offset   int
	Optional bool
}

// Descriptor is a type descriptor. Descriptors are immutable once
// registered — nothing in this package mutates a Descriptor returned from
// the registry; callers that need a variant must register a new id.
type Descriptor struct {
	ID   string
	Kind Kind

	// Composite sizing, meaningful when Kind is Struct or Array.
	Size  int
	Align int

	// Struct-only.
	Fields []FieldDescriptor

	// Array-only.
	ElementTypeID string
	ElementCount  int // VariableLength for variable-length arrays

	// Callback-only: a reference to the function signature the callback
	// must satisfy.
	CallbackSignature *Signature
}

// IsVariableLength reports whether an array descriptor has no fixed
// element count.
func (d *Descriptor) IsVariableLength() bool {
	return d.Kind == KindArray && d.ElementCount == VariableLength
}

// FieldByName returns the field descriptor with the given name, if any.
func (d *Descriptor) FieldByName(name string) (FieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Signature describes a function's shape: return type, ordered parameter
// types, which parameters are optional, their diagnostic names, and
// whether the final parameter is variadic. Signatures are immutable once
// built.
type Signature struct {
	ReturnTypeID string
	Params       []ParamDescriptor
	Variadic     bool
}

// ParamDescriptor describes one parameter of a Signature.
type ParamDescriptor struct {
	Name     string
	TypeID   string
	Optional bool
}

// FixedArity returns the count of non-variadic parameters (the trailing
// variadic parameter, if any, is not counted).
func (s *Signature) FixedArity() int {
	if s.Variadic && len(s.Params) > 0 {
		return len(s.Params) - 1
	}
	return len(s.Params)
}

// RequiredArity returns the minimum number of arguments a call must
// supply: every non-optional, non-variadic parameter.
func (s *Signature) RequiredArity() int {
	n := 0
	for i, p := range s.Params {
		if s.Variadic && i == len(s.Params)-1 {
			continue
		}
		if !p.Optional {
			n++
		}
	}
	return n
}
