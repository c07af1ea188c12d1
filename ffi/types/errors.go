// Package types implements the canonical type catalogue and the
// cross-language conversion engine (spec component C1).
package types

import "fmt"

// NotFoundError is returned when a type id cannot be resolved.
type NotFoundError struct {
	TypeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("types: type %q not found", e.TypeID)
}

// AlreadyRegisteredError is returned when a type id or conversion rule is
// registered a second time.
type AlreadyRegisteredError struct {
	TypeID string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("types: type %q already registered", e.TypeID)
}

// ConversionNotFoundError is returned when neither a direct rule nor a
// two-step path through the canonical primitive form exists.
type ConversionNotFoundError struct {
	SourceLanguage string
	SourceTypeID   string
	TargetLanguage string
	TargetTypeID   string
}

func (e *ConversionNotFoundError) Error() string {
	return fmt.Sprintf("types: no conversion from %s/%s to %s/%s",
		e.SourceLanguage, e.SourceTypeID, e.TargetLanguage, e.TargetTypeID)
}

// NarrowingLossError is returned when a narrowing numeric conversion would
// lose information and the rule was not flagged TruncateAllowed.
type NarrowingLossError struct {
	SourceKind Kind
	TargetKind Kind
	Value      any
}

func (e *NarrowingLossError) Error() string {
	return fmt.Sprintf("types: narrowing conversion from %s to %s would lose precision for value %v", e.SourceKind, e.TargetKind, e.Value)
}

// NonFiniteError is returned when a float→integer conversion is attempted
// on a non-finite (NaN/Inf) input.
type NonFiniteError struct {
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("types: cannot convert non-finite value %v to integer", e.Value)
}

// MalformedUTF8Error is returned when a string value fails UTF-8
// validation during conversion through the canonical form.
type MalformedUTF8Error struct{}

func (e *MalformedUTF8Error) Error() string {
	return "types: malformed UTF-8 in string conversion"
}

// InvalidParameterError is returned for structurally invalid requests
// (e.g. registering a struct descriptor with an empty or duplicate field
// name, or an array with an element count below -1).
type InvalidParameterError struct {
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("types: invalid parameter: %s", e.Reason)
}

// RequiredFieldMissingError is returned when converting a struct and a
// required (non-optional) field has no source value.
type RequiredFieldMissingError struct {
	StructID string
	Field    string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("types: required field %q missing converting %q", e.Field, e.StructID)
}
