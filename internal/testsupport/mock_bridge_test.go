package testsupport

import (
	"context"
	"errors"
	"testing"

	"github.com/obinexus/libpolycall/ffi/bridge"
	"github.com/obinexus/libpolycall/ffi/types"
)

var _ bridge.Adapter = (*MockBridge)(nil)

func TestMockBridgeCallEchoesFirstArgumentByDefault(t *testing.T) {
	b := NewMockBridge()
	result, err := b.Call(context.Background(), "echo", []types.CanonicalValue{types.NewInt32(5)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.AsInt64() != 5 {
		t.Fatalf("result: got %d, want 5", result.AsInt64())
	}
	if b.CallCount() != 1 {
		t.Fatalf("CallCount: got %d, want 1", b.CallCount())
	}
}

func TestMockBridgeCallErrOverridesDefault(t *testing.T) {
	b := NewMockBridge()
	b.CallErr = errors.New("boom")
	_, err := b.Call(context.Background(), "anything", nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("got %v, want boom", err)
	}
}

func TestMockBridgeCallFuncOverridesEverything(t *testing.T) {
	b := NewMockBridge()
	b.CallErr = errors.New("should not be reached")
	b.CallFunc = func(ctx context.Context, name string, args []types.CanonicalValue) (types.CanonicalValue, error) {
		return types.NewInt32(99), nil
	}
	result, err := b.Call(context.Background(), "f", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.AsInt64() != 99 {
		t.Fatalf("result: got %d, want 99", result.AsInt64())
	}
}

func TestMockBridgeInitializeAndCleanup(t *testing.T) {
	b := NewMockBridge()
	if err := b.Initialize(context.Background(), bridge.InitContext{Language: "python"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !b.Initialized {
		t.Fatal("expected Initialized to be true")
	}
	b.Cleanup(context.Background())
	if !b.CleanedUp {
		t.Fatal("expected CleanedUp to be true")
	}
}

func TestMockBridgeAcquireAndReleaseMemoryTrackHandles(t *testing.T) {
	b := NewMockBridge()
	if err := b.AcquireMemory(context.Background(), 1, 64); err != nil {
		t.Fatalf("AcquireMemory: %v", err)
	}
	if b.AcquiredHandles[1] != 1 {
		t.Fatalf("AcquiredHandles[1]: got %d, want 1", b.AcquiredHandles[1])
	}
	if err := b.ReleaseMemory(context.Background(), 1); err != nil {
		t.Fatalf("ReleaseMemory: %v", err)
	}
	if b.AcquiredHandles[1] != 0 {
		t.Fatalf("AcquiredHandles[1] after release: got %d, want 0", b.AcquiredHandles[1])
	}
}

func TestMockLoggerRecordsEntries(t *testing.T) {
	l := NewMockLogger()
	l.Info("started", "id", 1)
	l.Error("failed", "reason", "timeout")
	if !l.HasMessage("info", "started") {
		t.Fatal("expected an info/started entry")
	}
	if !l.HasMessage("error", "failed") {
		t.Fatal("expected an error/failed entry")
	}
	if len(l.Entries()) != 2 {
		t.Fatalf("Entries: got %d, want 2", len(l.Entries()))
	}
	l.Clear()
	if len(l.Entries()) != 0 {
		t.Fatal("expected Clear to empty the log")
	}
}
