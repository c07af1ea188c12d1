package types

import (
	"math"
	"sync"
	"unicode/utf8"
)

// ConversionKey identifies one registered conversion rule: a source
// language's type id converting to a target language's type id.
type ConversionKey struct {
	SourceLanguage string
	SourceTypeID   string
	TargetLanguage string
	TargetTypeID   string
}

// ConvertFunc converts a canonical value to the target type.
type ConvertFunc func(v CanonicalValue) (CanonicalValue, error)

// ValidateFunc optionally validates a value before conversion is applied.
type ValidateFunc func(v CanonicalValue) error

// Rule is one registered conversion: how to get from (SourceLanguage,
// SourceTypeID) to (TargetLanguage, TargetTypeID), optionally validated
// first, optionally permitted to truncate on narrowing loss.
type Rule struct {
	Key             ConversionKey
	Convert         ConvertFunc
	Validate        ValidateFunc
	TruncateAllowed bool
}

// Engine is the type registry plus the conversion rule catalogue (spec
// component C1 in full: "register a type descriptor; ... register a
// conversion rule ...; find a conversion; apply a conversion ...;
// validate a value against a type id").
type Engine struct {
	Types *Registry

	mu    sync.RWMutex
	rules map[ConversionKey]*Rule
}

// NewEngine creates a conversion engine backed by a fresh type registry.
func NewEngine() *Engine {
	return &Engine{
		Types: NewRegistry(),
		rules: make(map[ConversionKey]*Rule),
	}
}

// RegisterConversion adds rule to the catalogue. Registering the same key
// twice returns AlreadyRegisteredError.
func (e *Engine) RegisterConversion(rule Rule) error {
	if rule.Convert == nil {
		return &InvalidParameterError{Reason: "conversion rule must provide Convert"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rules[rule.Key]; exists {
		return &AlreadyRegisteredError{TypeID: rule.Key.SourceTypeID + "->" + rule.Key.TargetTypeID}
	}
	cp := rule
	e.rules[rule.Key] = &cp
	return nil
}

// FindConversion returns the rule registered for key, if any.
func (e *Engine) FindConversion(key ConversionKey) (*Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rules[key]
	return r, ok
}

// Convert applies a conversion from v (produced by srcLang) to
// (tgtLang, tgtTypeID). It tries a direct rule first; on miss it attempts
// a two-step path through the canonical primitive form (spec.md §4.1).
// Conversion never partially mutates its target: on any error the
// returned CanonicalValue is the zero value.
func (e *Engine) Convert(srcLang string, v CanonicalValue, tgtLang, tgtTypeID string) (CanonicalValue, error) {
	tgtDesc, err := e.Types.Lookup(tgtTypeID)
	if err != nil {
		return CanonicalValue{}, err
	}

	key := ConversionKey{SourceLanguage: srcLang, SourceTypeID: v.TypeID, TargetLanguage: tgtLang, TargetTypeID: tgtTypeID}
	if rule, ok := e.FindConversion(key); ok {
		if rule.Validate != nil {
			if err := rule.Validate(v); err != nil {
				return CanonicalValue{}, err
			}
		}
		return rule.Convert(v)
	}

	srcDesc, err := e.Types.Lookup(v.TypeID)
	if err != nil {
		return CanonicalValue{}, err
	}

	if srcDesc.Kind.IsPrimitive() && tgtDesc.Kind.IsPrimitive() {
		return convertPrimitive(v, srcDesc.Kind, tgtDesc.Kind, tgtTypeID, false)
	}

	if srcDesc.Kind == KindStruct && tgtDesc.Kind == KindStruct {
		return e.convertStruct(v, srcDesc, tgtDesc)
	}

	return CanonicalValue{}, &ConversionNotFoundError{
		SourceLanguage: srcLang, SourceTypeID: v.TypeID,
		TargetLanguage: tgtLang, TargetTypeID: tgtTypeID,
	}
}

// Compatible reports whether a value of srcTypeID could in principle be
// converted to tgtTypeID: identical ids, a primitive kind pair accepted
// by primitiveKindsConvertible, both struct kinds, or an explicit direct
// rule registered for the pair under
// any language. This is the static check signature validation performs
// before any conversion is attempted, not a guarantee the conversion
// will succeed for every value (a narrowing rule can still reject a
// particular value at Convert time).
func (e *Engine) Compatible(srcTypeID, tgtTypeID string) bool {
	if srcTypeID == tgtTypeID {
		return true
	}
	srcDesc, err := e.Types.Lookup(srcTypeID)
	if err != nil {
		return false
	}
	tgtDesc, err := e.Types.Lookup(tgtTypeID)
	if err != nil {
		return false
	}
	if srcDesc.Kind.IsPrimitive() && tgtDesc.Kind.IsPrimitive() && primitiveKindsConvertible(srcDesc.Kind, tgtDesc.Kind) {
		return true
	}
	if srcDesc.Kind == KindStruct && tgtDesc.Kind == KindStruct {
		return true
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for key := range e.rules {
		if key.SourceTypeID == srcTypeID && key.TargetTypeID == tgtTypeID {
			return true
		}
	}
	return false
}

// primitiveKindsConvertible mirrors the kind pairs convertPrimitive
// actually handles, so Compatible never approves a pair that Convert
// would reject outright (as opposed to rejecting a specific value for
// narrowing loss, which Compatible intentionally does not predict).
func primitiveKindsConvertible(srcKind, tgtKind Kind) bool {
	if srcKind == tgtKind {
		return true
	}
	switch {
	case srcKind.IsInteger() && tgtKind.IsInteger():
		return true
	case srcKind.IsInteger() && tgtKind.IsFloat():
		return true
	case srcKind.IsFloat() && tgtKind.IsInteger():
		return true
	case srcKind.IsFloat() && tgtKind.IsFloat():
		return true
	default:
		return false
	}
}

// convertPrimitive is the built-in primitive-to-primitive step of the
// two-step canonical path; no rule is registered for it. Widening and
// same-kind conversions are value-preserving;
// narrowing integer conversions fail with NarrowingLoss unless
// truncateAllowed; float→integer truncates toward zero and rejects
// non-finite input; strings always pass through UTF-8 validation.
func convertPrimitive(v CanonicalValue, srcKind, tgtKind Kind, tgtTypeID string, truncateAllowed bool) (CanonicalValue, error) {
	if srcKind == KindString && tgtKind == KindString {
		if !utf8.Valid(v.Str) {
			return CanonicalValue{}, &MalformedUTF8Error{}
		}
		cp := v
		cp.TypeID = tgtTypeID
		return cp, nil
	}

	if srcKind == tgtKind {
		cp := v
		cp.TypeID = tgtTypeID
		return cp, nil
	}

	switch {
	case srcKind.IsInteger() && tgtKind.IsInteger():
		return convertIntToInt(v, srcKind, tgtKind, tgtTypeID, truncateAllowed)

	case srcKind.IsInteger() && tgtKind.IsFloat():
		var f float64
		if srcKind.IsSigned() {
			f = float64(v.AsInt64())
		} else {
			f = float64(v.AsUint64())
		}
		return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: f}, nil

	case srcKind.IsFloat() && tgtKind.IsInteger():
		return convertFloatToInt(v.AsFloat64(), tgtKind, tgtTypeID, truncateAllowed)

	case srcKind == KindFloat64 && tgtKind == KindFloat32:
		f := v.AsFloat64()
		if !truncateAllowed && (math.Abs(f) > math.MaxFloat32) {
			return CanonicalValue{}, &NarrowingLossError{SourceKind: srcKind, TargetKind: tgtKind, Value: f}
		}
		return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: float64(float32(f))}, nil

	case srcKind == KindFloat32 && tgtKind == KindFloat64:
		return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: v.AsFloat64()}, nil

	case (srcKind == KindBool || srcKind == KindChar) && srcKind == tgtKind:
		cp := v
		cp.TypeID = tgtTypeID
		return cp, nil

	default:
		return CanonicalValue{}, &ConversionNotFoundError{
			SourceTypeID: v.TypeID, TargetTypeID: tgtTypeID,
		}
	}
}

func convertIntToInt(v CanonicalValue, srcKind, tgtKind Kind, tgtTypeID string, truncateAllowed bool) (CanonicalValue, error) {
	srcSize := srcKind.IntrinsicSize()
	tgtSize := tgtKind.IntrinsicSize()

	widening := tgtSize > srcSize || (tgtSize == srcSize && srcKind.IsSigned() == tgtKind.IsSigned())
	if widening && !(tgtSize < srcSize) {
		if srcKind.IsSigned() {
			n := v.AsInt64()
			if !tgtKind.IsSigned() && n < 0 {
				if !truncateAllowed {
					return CanonicalValue{}, &NarrowingLossError{SourceKind: srcKind, TargetKind: tgtKind, Value: n}
				}
			}
			if tgtKind.IsSigned() {
				return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: n}, nil
			}
			return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: uint64(n)}, nil
		}
		n := v.AsUint64()
		if tgtKind.IsSigned() {
			return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: int64(n)}, nil
		}
		return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: n}, nil
	}

	return narrowInt(v, srcKind, tgtKind, tgtTypeID, truncateAllowed)
}

func narrowInt(v CanonicalValue, srcKind, tgtKind Kind, tgtTypeID string, truncateAllowed bool) (CanonicalValue, error) {
	lo, hi := intRange(tgtKind)

	var signed int64
	var unsigned uint64
	var isSigned bool
	if srcKind.IsSigned() {
		signed = v.AsInt64()
		isSigned = true
	} else {
		unsigned = v.AsUint64()
	}

	inRange := func() bool {
		if isSigned {
			return signed >= lo && (hi < 0 || signed <= hi)
		}
		return int64(unsigned) >= lo && (hi < 0 || unsigned <= uint64(hi))
	}

	if !inRange() && !truncateAllowed {
		val := any(signed)
		if !isSigned {
			val = unsigned
		}
		return CanonicalValue{}, &NarrowingLossError{SourceKind: srcKind, TargetKind: tgtKind, Value: val}
	}

	// Truncate by masking to the target width, then reinterpret per
	// target signedness.
	width := tgtKind.IntrinsicSize() * 8
	var masked uint64
	if isSigned {
		masked = uint64(signed)
	} else {
		masked = unsigned
	}
	if width < 64 {
		masked &= (uint64(1) << uint(width)) - 1
	}

	if tgtKind.IsSigned() {
		shift := 64 - width
		signedResult := int64(masked<<uint(shift)) >> uint(shift)
		return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: signedResult}, nil
	}
	return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: masked}, nil
}

func intRange(k Kind) (lo, hi int64) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8
	case KindUint8:
		return 0, math.MaxUint8
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindUint16:
		return 0, math.MaxUint16
	case KindInt32:
		return math.MinInt32, math.MaxInt32
	case KindUint32:
		return 0, math.MaxUint32
	case KindInt64:
		return math.MinInt64, math.MaxInt64
	case KindUint64:
		return 0, -1 // hi < 0 is treated as "no practical upper bound" by callers
	default:
		return 0, 0
	}
}

func convertFloatToInt(f float64, tgtKind Kind, tgtTypeID string, truncateAllowed bool) (CanonicalValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return CanonicalValue{}, &NonFiniteError{Value: f}
	}
	truncated := math.Trunc(f)
	lo, hi := intRange(tgtKind)
	inRange := truncated >= float64(lo) && (hi < 0 || truncated <= float64(hi))
	if !inRange && !truncateAllowed {
		return CanonicalValue{}, &NarrowingLossError{SourceKind: KindFloat64, TargetKind: tgtKind, Value: f}
	}
	if tgtKind.IsSigned() {
		return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: int64(truncated)}, nil
	}
	return CanonicalValue{TypeID: tgtTypeID, Kind: tgtKind, Ownership: Owned, Num: uint64(truncated)}, nil
}

// convertStruct walks the target struct's fields in declaration order,
// sourcing each from the matching field of v (by name) and converting
// primitive-to-primitive through the two-step path; a missing optional
// field is zero-initialized, a missing required field fails.
//
// Struct payloads live behind memory-bridge handles in this design, so
// the engine operates on an in-memory field map supplied via
// StructFields/NewStructValue rather than walking raw bytes.
func (e *Engine) convertStruct(v CanonicalValue, srcDesc, tgtDesc *Descriptor) (CanonicalValue, error) {
	srcFields, ok := structFieldCache.load(v.Handle)
	if !ok {
		return CanonicalValue{}, &InvalidParameterError{Reason: "struct value has no field data registered"}
	}

	out := make(map[string]CanonicalValue, len(tgtDesc.Fields))
	for _, tf := range tgtDesc.Fields {
		sv, present := srcFields[tf.Name]
		if !present {
			if tf.Optional {
				zd, err := e.Types.Lookup(tf.TypeID)
				if err != nil {
					return CanonicalValue{}, err
				}
				out[tf.Name] = zeroValue(zd)
				continue
			}
			return CanonicalValue{}, &RequiredFieldMissingError{StructID: tgtDesc.ID, Field: tf.Name}
		}

		converted, err := e.Convert("", sv, "", tf.TypeID)
		if err != nil {
			return CanonicalValue{}, err
		}
		out[tf.Name] = converted
	}

	handle := structFieldCache.store(out)
	return CanonicalValue{TypeID: tgtDesc.ID, Kind: KindStruct, Ownership: Owned, Handle: handle}, nil
}

func zeroValue(d *Descriptor) CanonicalValue {
	switch d.Kind {
	case KindBool:
		return CanonicalValue{TypeID: d.ID, Kind: d.Kind, Ownership: Owned, Num: false}
	case KindString:
		return CanonicalValue{TypeID: d.ID, Kind: d.Kind, Ownership: Owned, Str: []byte{}}
	case KindFloat32, KindFloat64:
		return CanonicalValue{TypeID: d.ID, Kind: d.Kind, Ownership: Owned, Num: float64(0)}
	default:
		if d.Kind.IsInteger() {
			if d.Kind.IsSigned() {
				return CanonicalValue{TypeID: d.ID, Kind: d.Kind, Ownership: Owned, Num: int64(0)}
			}
			return CanonicalValue{TypeID: d.ID, Kind: d.Kind, Ownership: Owned, Num: uint64(0)}
		}
		return CanonicalValue{TypeID: d.ID, Kind: d.Kind, Ownership: Owned}
	}
}
