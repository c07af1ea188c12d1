package bridge

import "fmt"

// FaultError wraps an opaque error surfaced from an adapter with a
// diagnostic string, matching spec.md's BridgeFault failure semantics:
// an opaque error from the adapter carries a diagnostic, not a typed
// core error, since the core cannot interpret host-language exceptions.
type FaultError struct {
	Language   string
	Diagnostic string
	Kind       ExceptionKind
	Cause      error
}

func (e *FaultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bridge: %s adapter fault (%s): %s: %v", e.Language, e.Kind, e.Diagnostic, e.Cause)
	}
	return fmt.Sprintf("bridge: %s adapter fault (%s): %s", e.Language, e.Kind, e.Diagnostic)
}

func (e *FaultError) Unwrap() error { return e.Cause }

// NotInitializedError is returned when Call/ConvertToNative/etc. is
// invoked on an adapter that has not completed Initialize.
type NotInitializedError struct {
	Language string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("bridge: adapter %q not initialized", e.Language)
}

// FunctionNotFoundError is returned by an adapter when asked to call a
// name it has no callee registered for.
type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("bridge: function %q not registered with adapter", e.Name)
}
