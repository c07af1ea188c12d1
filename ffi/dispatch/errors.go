// Package dispatch implements the FFI core registry and call dispatcher
// (spec component C4): it registers language bridges and functions, and
// routes a call through signature validation, security, the performance
// cache, and the target bridge contract.
package dispatch

import "fmt"

// InvalidParameterError is returned for structurally invalid requests.
type InvalidParameterError struct {
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("dispatch: invalid parameter: %s", e.Reason)
}

// CapacityExceededError is returned when a table is at its configured
// capacity.
type CapacityExceededError struct {
	Table     string
	Capacity  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("dispatch: %s table at capacity (%d)", e.Table, e.Capacity)
}

// AlreadyRegisteredError is returned when a language or function name is
// registered a second time.
type AlreadyRegisteredError struct {
	Kind string // "language" or "function"
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("dispatch: %s %q already registered", e.Kind, e.Name)
}

// FunctionNotFoundError is returned when a call names a function with no
// live registration.
type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("dispatch: function %q not found", e.Name)
}

// LanguageNotRegisteredError is returned when a call targets a language
// with no registered bridge.
type LanguageNotRegisteredError struct {
	Language string
}

func (e *LanguageNotRegisteredError) Error() string {
	return fmt.Sprintf("dispatch: language %q not registered", e.Language)
}

// SignatureMismatchError is returned when a call's arguments do not
// match a function's declared signature in arity or type compatibility.
type SignatureMismatchError struct {
	Function string
	Reason   string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("dispatch: call to %q: signature mismatch: %s", e.Function, e.Reason)
}

// PermissionDeniedError is returned when the security layer denies
// access for a call.
type PermissionDeniedError struct {
	Function string
	Source   string
	Missing  []string
	Reason   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("dispatch: call to %q from %q denied: %s (missing %v)", e.Function, e.Source, e.Reason, e.Missing)
}

// ConversionFailedError wraps a types-package conversion error
// encountered while preparing a call's arguments or its result.
type ConversionFailedError struct {
	Function string
	Cause    error
}

func (e *ConversionFailedError) Error() string {
	return fmt.Sprintf("dispatch: call to %q: conversion failed: %v", e.Function, e.Cause)
}

func (e *ConversionFailedError) Unwrap() error { return e.Cause }

// BridgeFaultError wraps an opaque error surfaced by the target
// language's adapter.
type BridgeFaultError struct {
	Function string
	Language string
	Cause    error
}

func (e *BridgeFaultError) Error() string {
	return fmt.Sprintf("dispatch: call to %q on %q: bridge fault: %v", e.Function, e.Language, e.Cause)
}

func (e *BridgeFaultError) Unwrap() error { return e.Cause }
