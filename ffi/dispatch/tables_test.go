package dispatch

import (
	"context"
	"testing"

	"github.com/obinexus/libpolycall/ffi/bridge"
	"github.com/obinexus/libpolycall/ffi/memory"
	"github.com/obinexus/libpolycall/ffi/types"
)

type stubAdapter struct{}

func (stubAdapter) ConvertToNative(ctx context.Context, value types.CanonicalValue, desc *types.Descriptor) (bridge.Native, error) {
	return value, nil
}
func (stubAdapter) ConvertFromNative(ctx context.Context, native bridge.Native, desc *types.Descriptor) (types.CanonicalValue, error) {
	return native.(types.CanonicalValue), nil
}
func (stubAdapter) RegisterFunction(ctx context.Context, name string, callee bridge.Callee, sig *types.Signature) error {
	return nil
}
func (stubAdapter) Call(ctx context.Context, name string, args []types.CanonicalValue) (types.CanonicalValue, error) {
	if len(args) == 0 {
		return types.Void(), nil
	}
	return args[0], nil
}
func (stubAdapter) AcquireMemory(ctx context.Context, handle memory.RegionHandle, size int) error {
	return nil
}
func (stubAdapter) ReleaseMemory(ctx context.Context, handle memory.RegionHandle) error { return nil }
func (stubAdapter) TranslateException(native any) (string, bridge.ExceptionKind) {
	return "", bridge.ExceptionGeneric
}
func (stubAdapter) Initialize(ctx context.Context, initCtx bridge.InitContext) error { return nil }
func (stubAdapter) Cleanup(ctx context.Context)                                      {}

func TestRegisterLanguageDuplicateLabelFails(t *testing.T) {
	tb := newTables(0)
	if err := tb.registerLanguage("python", stubAdapter{}, 0); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := tb.registerLanguage("python", stubAdapter{}, 0); err == nil {
		t.Fatal("expected duplicate label to fail")
	}
}

func TestRegisterLanguageRejectsEmptyLabelOrNilAdapter(t *testing.T) {
	tb := newTables(0)
	if err := tb.registerLanguage("", stubAdapter{}, 0); err == nil {
		t.Fatal("expected empty label to fail")
	}
	if err := tb.registerLanguage("python", nil, 0); err == nil {
		t.Fatal("expected nil adapter to fail")
	}
}

func TestUnregisterLanguageRemovesEntry(t *testing.T) {
	tb := newTables(0)
	tb.registerLanguage("python", stubAdapter{}, 0)
	tb.unregisterLanguage("python")
	if _, ok := tb.lookupLanguage("python"); ok {
		t.Fatal("expected lookup to miss after unregister")
	}
	if tb.languageCount() != 0 {
		t.Fatalf("languageCount: got %d, want 0", tb.languageCount())
	}
}

func TestRegisterFunctionDuplicateNameFails(t *testing.T) {
	tb := newTables(0)
	rec := FunctionRecord{Name: "add"}
	if err := tb.registerFunction(rec); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := tb.registerFunction(rec); err == nil {
		t.Fatal("expected duplicate function name to fail")
	}
}

func TestRegisterFunctionRejectsEmptyName(t *testing.T) {
	tb := newTables(0)
	if err := tb.registerFunction(FunctionRecord{}); err == nil {
		t.Fatal("expected empty function name to fail")
	}
}

func TestRegisterFunctionEnforcesCapacity(t *testing.T) {
	tb := newTables(1)
	if err := tb.registerFunction(FunctionRecord{Name: "a"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := tb.registerFunction(FunctionRecord{Name: "b"})
	if err == nil {
		t.Fatal("expected second register to exceed capacity")
	}
	if _, ok := err.(*CapacityExceededError); !ok {
		t.Fatalf("got %T, want *CapacityExceededError", err)
	}
	if tb.functionCount() != 1 {
		t.Fatalf("functionCount: got %d, want 1 (capacity-exceeding register must not mutate)", tb.functionCount())
	}
}

func TestUnregisterFunctionDoesNotAffectInFlightEntry(t *testing.T) {
	tb := newTables(0)
	tb.registerFunction(FunctionRecord{Name: "slow"})

	fe, ok := tb.lookupFunction("slow")
	if !ok {
		t.Fatal("expected lookup to find the registered function")
	}
	fe.enter()

	tb.unregisterFunction("slow")

	if _, ok := tb.lookupFunction("slow"); ok {
		t.Fatal("expected lookup to miss immediately after unregister")
	}
	if fe.record.Name != "slow" {
		t.Fatal("expected the captured entry to still carry its record")
	}
	if fe.inFlight() != 1 {
		t.Fatalf("inFlight: got %d, want 1", fe.inFlight())
	}
	fe.leave()
	if fe.inFlight() != 0 {
		t.Fatalf("inFlight after leave: got %d, want 0", fe.inFlight())
	}
}

func TestFunctionNamesAndLanguageNames(t *testing.T) {
	tb := newTables(0)
	tb.registerFunction(FunctionRecord{Name: "a"})
	tb.registerFunction(FunctionRecord{Name: "b"})
	tb.registerLanguage("python", stubAdapter{}, 0)

	names := tb.functionNames()
	if len(names) != 2 {
		t.Fatalf("functionNames: got %d entries, want 2", len(names))
	}
	langs := tb.languageNames()
	if len(langs) != 1 || langs[0] != "python" {
		t.Fatalf("languageNames: got %v, want [python]", langs)
	}
}

func TestLanguageEntryThreadSafeReflectsCapability(t *testing.T) {
	tb := newTables(0)
	tb.registerLanguage("js", stubAdapter{}, 0)
	tb.registerLanguage("rust", stubAdapter{}, bridge.CapabilityThreadSafe)

	js, _ := tb.lookupLanguage("js")
	if js.threadSafe() {
		t.Fatal("expected js entry to not be thread-safe")
	}
	rust, _ := tb.lookupLanguage("rust")
	if !rust.threadSafe() {
		t.Fatal("expected rust entry to be thread-safe")
	}
}
