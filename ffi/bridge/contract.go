// Package bridge defines the adapter contract every language runtime
// implements to participate in the FFI core (spec component C6).
package bridge

import (
	"context"

	"github.com/obinexus/libpolycall/ffi/memory"
	"github.com/obinexus/libpolycall/ffi/types"
)

// Native is an opaque value in the adapter's own runtime representation
// (a PyObject*, a JS value handle, a Rust trait object pointer — the
// core never interprets it).
type Native any

// Callee is an opaque reference to the invocable thing a function
// record points at, supplied by the registering adapter.
type Callee any

// Capability is a bitset of traits an adapter declares about itself.
type Capability uint32

const (
	// CapabilityThreadSafe declares the adapter may be invoked
	// concurrently from multiple goroutines. Absent this flag, the core
	// serializes every call into the adapter behind an adapter-scoped
	// lock (spec.md §5 "Scheduling model").
	CapabilityThreadSafe Capability = 1 << iota
	// CapabilityBatchable declares the adapter supports being driven by
	// the performance manager's batch dispatch queue.
	CapabilityBatchable
)

// Has reports whether c includes capability.
func (c Capability) Has(capability Capability) bool {
	return c&capability != 0
}

// ExceptionKind classifies a host-language exception translated into a
// core-level diagnostic.
type ExceptionKind string

const (
	ExceptionGeneric  ExceptionKind = "generic"
	ExceptionTimeout  ExceptionKind = "timeout"
	ExceptionResource ExceptionKind = "resource"
	ExceptionLogic    ExceptionKind = "logic"
)

// InitContext carries the information an adapter needs to set up its
// runtime: the language label it is registering under and the
// capability flags it declared.
type InitContext struct {
	Language     string
	Capabilities Capability
	UserData     any
}

// Adapter is the interface every language runtime implements (spec.md
// §4.6). Adapters are stateless with respect to the core: whatever
// state they need travels inside Callee or inside canonical values.
// Thread-safety is the adapter's own responsibility — the core only
// guarantees serialized access unless CapabilityThreadSafe is declared.
type Adapter interface {
	// ConvertToNative converts a canonical value to this adapter's
	// native representation, per desc.
	ConvertToNative(ctx context.Context, value types.CanonicalValue, desc *types.Descriptor) (Native, error)

	// ConvertFromNative converts a native value produced by this
	// adapter back to canonical form, per desc.
	ConvertFromNative(ctx context.Context, native Native, desc *types.Descriptor) (types.CanonicalValue, error)

	// RegisterFunction makes a callee reachable under name for later Call
	// invocations. Adapters are expected to reject duplicate names.
	RegisterFunction(ctx context.Context, name string, callee Callee, sig *types.Signature) error

	// Call invokes the named function with canonical arguments and
	// returns a canonical result.
	Call(ctx context.Context, name string, args []types.CanonicalValue) (types.CanonicalValue, error)

	// AcquireMemory and ReleaseMemory let the adapter participate in a
	// shared region's lifetime — e.g. pinning a native buffer while the
	// core holds a reference to it.
	AcquireMemory(ctx context.Context, handle memory.RegionHandle, size int) error
	ReleaseMemory(ctx context.Context, handle memory.RegionHandle) error

	// TranslateException converts a host-language exception value into a
	// diagnostic string and a coarse kind the core can reason about.
	TranslateException(native any) (diagnostic string, kind ExceptionKind)

	// Initialize and Cleanup bracket the adapter's participation in a
	// core context's lifetime.
	Initialize(ctx context.Context, initCtx InitContext) error
	Cleanup(ctx context.Context)
}
