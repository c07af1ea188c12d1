package testsupport

import (
	"context"
	"sync"

	"github.com/obinexus/libpolycall/ffi/bridge"
	"github.com/obinexus/libpolycall/ffi/memory"
	"github.com/obinexus/libpolycall/ffi/types"
)

// RecordedCall captures one Call invocation for later assertion.
type RecordedCall struct {
	Name string
	Args []types.CanonicalValue
}

// MockBridge implements bridge.Adapter entirely in memory: Call by
// default echoes its first argument back, Initialize/Cleanup just flip
// flags, and every path is overridable for a specific test.
type MockBridge struct {
	mu sync.Mutex

	Functions map[string]bridge.Callee
	Calls     []RecordedCall

	// CallFunc, if set, replaces the default echo-first-argument
	// behavior entirely.
	CallFunc   func(ctx context.Context, name string, args []types.CanonicalValue) (types.CanonicalValue, error)
	CallErr    error
	CallResult types.CanonicalValue

	InitErr     error
	Initialized bool
	CleanedUp   bool

	AcquireErr      error
	ReleaseErr      error
	AcquiredHandles map[memory.RegionHandle]int
}

// NewMockBridge creates a MockBridge ready to register and call
// functions against.
func NewMockBridge() *MockBridge {
	return &MockBridge{
		Functions:       make(map[string]bridge.Callee),
		AcquiredHandles: make(map[memory.RegionHandle]int),
		CallResult:      types.Void(),
	}
}

// ConvertToNative returns value unchanged, boxed as bridge.Native.
func (m *MockBridge) ConvertToNative(ctx context.Context, value types.CanonicalValue, desc *types.Descriptor) (bridge.Native, error) {
	return value, nil
}

// ConvertFromNative unboxes a value previously produced by
// ConvertToNative.
func (m *MockBridge) ConvertFromNative(ctx context.Context, native bridge.Native, desc *types.Descriptor) (types.CanonicalValue, error) {
	if v, ok := native.(types.CanonicalValue); ok {
		return v, nil
	}
	return types.Void(), nil
}

// RegisterFunction records callee under name.
func (m *MockBridge) RegisterFunction(ctx context.Context, name string, callee bridge.Callee, sig *types.Signature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Functions[name] = callee
	return nil
}

// Call records the invocation and, absent an override, echoes the
// first argument back (or CallResult if there are none).
func (m *MockBridge) Call(ctx context.Context, name string, args []types.CanonicalValue) (types.CanonicalValue, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RecordedCall{Name: name, Args: args})
	fn := m.CallFunc
	callErr := m.CallErr
	result := m.CallResult
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, name, args)
	}
	if callErr != nil {
		return types.CanonicalValue{}, callErr
	}
	if len(args) > 0 {
		return args[0], nil
	}
	return result, nil
}

// AcquireMemory increments the pin count for handle.
func (m *MockBridge) AcquireMemory(ctx context.Context, handle memory.RegionHandle, size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireErr != nil {
		return m.AcquireErr
	}
	m.AcquiredHandles[handle]++
	return nil
}

// ReleaseMemory decrements the pin count for handle.
func (m *MockBridge) ReleaseMemory(ctx context.Context, handle memory.RegionHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReleaseErr != nil {
		return m.ReleaseErr
	}
	m.AcquiredHandles[handle]--
	return nil
}

// TranslateException always reports a generic mock exception.
func (m *MockBridge) TranslateException(native any) (string, bridge.ExceptionKind) {
	return "mock exception", bridge.ExceptionGeneric
}

// Initialize flips Initialized, or returns InitErr if set.
func (m *MockBridge) Initialize(ctx context.Context, initCtx bridge.InitContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}

// Cleanup flips CleanedUp.
func (m *MockBridge) Cleanup(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CleanedUp = true
}

// CallCount returns the number of recorded Call invocations.
func (m *MockBridge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RecordedCalls returns a copy of every recorded Call invocation.
func (m *MockBridge) RecordedCalls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedCall, len(m.Calls))
	copy(out, m.Calls)
	return out
}
