package types

import "sync"

// Registry is an append-only catalogue of type descriptors keyed by id,
// grounded on the same "map behind an RWMutex, register/lookup by name"
// shape used throughout this module's subsystem registries.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]*Descriptor
	aliases map[string]string
}

// NewRegistry creates an empty type registry and installs the built-in
// primitive descriptors (void, bool, char, the signed/unsigned integer
// widths, float32/float64, string, pointer) under their canonical names.
func NewRegistry() *Registry {
	r := &Registry{
		byID:    make(map[string]*Descriptor),
		aliases: make(map[string]string),
	}
	r.registerPrimitives()
	return r
}

var primitiveNames = map[Kind]string{
	KindVoid:    "void",
	KindBool:    "bool",
	KindChar:    "char",
	KindInt8:    "i8",
	KindUint8:   "u8",
	KindInt16:   "i16",
	KindUint16:  "u16",
	KindInt32:   "i32",
	KindUint32:  "u32",
	KindInt64:   "i64",
	KindUint64:  "u64",
	KindFloat32: "f32",
	KindFloat64: "f64",
	KindString:  "string",
	KindPointer: "pointer",
}

func (r *Registry) registerPrimitives() {
	for kind, name := range primitiveNames {
		r.byID[name] = &Descriptor{ID: name, Kind: kind, Size: kind.IntrinsicSize()}
	}
}

// Register adds a type descriptor to the catalogue. Registering the same
// id twice returns AlreadyRegisteredError; the existing descriptor is left
// untouched.
func (r *Registry) Register(desc *Descriptor) error {
	if desc == nil || desc.ID == "" {
		return &InvalidParameterError{Reason: "descriptor id must be non-empty"}
	}
	if err := r.validateDescriptor(desc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[desc.ID]; exists {
		return &AlreadyRegisteredError{TypeID: desc.ID}
	}
	cp := *desc
	cp.Fields = append([]FieldDescriptor(nil), desc.Fields...)
	r.byID[desc.ID] = &cp
	return nil
}

func (r *Registry) validateDescriptor(desc *Descriptor) error {
	switch desc.Kind {
	case KindArray:
		if desc.ElementCount < VariableLength {
			return &InvalidParameterError{Reason: "array element count must be >= -1"}
		}
	case KindStruct:
		seen := make(map[string]struct{}, len(desc.Fields))
		for _, f := range desc.Fields {
			if f.Name == "" {
				return &InvalidParameterError{Reason: "struct field name must be non-empty"}
			}
			if _, dup := seen[f.Name]; dup {
				return &InvalidParameterError{Reason: "duplicate struct field " + f.Name}
			}
			seen[f.Name] = struct{}{}
		}
	}
	return nil
}

// RegisterAlias makes alias resolve to the same descriptor as target, so
// two languages can refer to an identical shape under different local
// names without re-describing its fields. Aliasing an unknown target or
// an already-used alias id is an error.
func (r *Registry) RegisterAlias(alias, target string) error {
	if alias == "" || target == "" {
		return &InvalidParameterError{Reason: "alias and target must be non-empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[alias]; exists {
		return &AlreadyRegisteredError{TypeID: alias}
	}
	if _, exists := r.aliases[alias]; exists {
		return &AlreadyRegisteredError{TypeID: alias}
	}
	resolved := r.resolveLocked(target)
	if _, ok := r.byID[resolved]; !ok {
		return &NotFoundError{TypeID: target}
	}
	r.aliases[alias] = resolved
	return nil
}

func (r *Registry) resolveLocked(id string) string {
	seen := make(map[string]struct{})
	for {
		if _, isAlias := seen[id]; isAlias {
			return id // cycle guard; will fail lookup below
		}
		seen[id] = struct{}{}
		target, ok := r.aliases[id]
		if !ok {
			return id
		}
		id = target
	}
}

// Lookup resolves id (or an alias of id) to its descriptor.
func (r *Registry) Lookup(id string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved := r.resolveLocked(id)
	desc, ok := r.byID[resolved]
	if !ok {
		return nil, &NotFoundError{TypeID: id}
	}
	return desc, nil
}

// Has reports whether id (or an alias of it) is registered.
func (r *Registry) Has(id string) bool {
	_, err := r.Lookup(id)
	return err == nil
}

// Count returns the number of registered descriptors, not counting
// aliases.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Validate checks that value's Kind matches the registered descriptor's
// Kind for typeID. Only Kind is compared: for composite kinds the
// value's handle and field data are not inspected.
func (r *Registry) Validate(value CanonicalValue, typeID string) error {
	desc, err := r.Lookup(typeID)
	if err != nil {
		return err
	}
	if value.Kind != desc.Kind {
		return &InvalidParameterError{Reason: "value kind " + value.Kind.String() + " does not match type " + typeID + " (" + desc.Kind.String() + ")"}
	}
	return nil
}
