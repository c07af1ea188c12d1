package memory

import (
	"sync"
	"testing"
	"time"
)

func TestAcquireAndQuery(t *testing.T) {
	b := New(0, nil, nil, nil)
	h, err := b.Acquire(64, 8, "go", PermRead|PermWrite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := b.Query(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Size != 64 || info.Owner != "go" || info.RefCount != 1 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestAcquireCapacityExceeded(t *testing.T) {
	b := New(100, nil, nil, nil)
	if _, err := b.Acquire(64, 8, "go", PermRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := b.Acquire(64, 8, "go", PermRead)
	if _, ok := err.(*CapacityExceededError); !ok {
		t.Fatalf("expected *CapacityExceededError, got %T (%v)", err, err)
	}
}

func TestQueryUnknownHandle(t *testing.T) {
	b := New(0, nil, nil, nil)
	_, err := b.Query(RegionHandle(999))
	if _, ok := err.(*RegionNotFoundError); !ok {
		t.Fatalf("expected *RegionNotFoundError, got %T (%v)", err, err)
	}
}

func TestAddBorrowerPermissionEscalationRejected(t *testing.T) {
	b := New(0, nil, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	err := b.AddBorrower(h, "python", PermRead|PermWrite)
	if _, ok := err.(*PermissionEscalationError); !ok {
		t.Fatalf("expected *PermissionEscalationError, got %T (%v)", err, err)
	}
}

func TestAddBorrowerSubsetPermissionSucceeds(t *testing.T) {
	b := New(0, nil, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead|PermWrite)
	if err := b.AddBorrower(h, "python", PermRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, _ := b.Query(h)
	if !info.Shared || info.RefCount != 2 || len(info.Borrowers) != 1 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestReleaseStillBorrowedRejectedWithoutForce(t *testing.T) {
	b := New(0, nil, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	if err := b.AddBorrower(h, "python", PermRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := b.Release(h, false)
	if _, ok := err.(*StillBorrowedError); !ok {
		t.Fatalf("expected *StillBorrowedError, got %T (%v)", err, err)
	}
}

func TestReleaseForceWithLiveBorrowersPublishesAudit(t *testing.T) {
	bus := newTestBus()
	var mu sync.Mutex
	var received []string
	unsub := bus.SubscribeAudit(func(action string) {
		mu.Lock()
		received = append(received, action)
		mu.Unlock()
	})
	defer unsub()

	b := New(0, nil, bus.bus, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	if err := b.AddBorrower(h, "python", PermRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Release(h, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	})
	mu.Lock()
	defer mu.Unlock()
	if received[0] != "policy_violation" {
		t.Fatalf("expected policy_violation audit event, got %v", received)
	}

	if _, err := b.Query(h); err == nil {
		t.Fatal("expected region to be gone after forced release")
	}
}

func TestRemoveBorrowerTriggersGCNotifier(t *testing.T) {
	b := New(0, nil, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	if err := b.AddBorrower(h, "python", PermRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notified := make(chan RegionHandle, 1)
	unsub := b.RegisterGCNotifier("go", func(handle RegionHandle) {
		notified <- handle
	})
	defer unsub()

	if err := b.RemoveBorrower(h, "python"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case got := <-notified:
		if got != h {
			t.Fatalf("expected handle %d, got %d", h, got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for GC notifier")
	}
}

type sensitiveClassifier struct{ sensitive map[string]bool }

func (c sensitiveClassifier) IsSensitive(typeID string) bool { return c.sensitive[typeID] }

func TestShareZeroCopyForNonSensitive(t *testing.T) {
	b := New(0, sensitiveClassifier{sensitive: map[string]bool{}}, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	got, err := b.Share(h, "python", PermRead, "i32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != h {
		t.Fatalf("expected zero-copy share to return the same handle, got %d vs %d", got, h)
	}
}

func TestShareCopyOnAcquireForSensitive(t *testing.T) {
	b := New(0, sensitiveClassifier{sensitive: map[string]bool{"secret": true}}, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	got, err := b.Share(h, "python", PermRead, "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == h {
		t.Fatal("expected a distinct copied region for a sensitive share")
	}
	info, err := b.Query(got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Owner != "python" {
		t.Fatalf("expected copied region owned by python, got %q", info.Owner)
	}
}

func TestIncRefDecRef(t *testing.T) {
	b := New(0, nil, nil, nil)
	h, _ := b.Acquire(64, 8, "go", PermRead)
	if err := b.IncRef(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, _ := b.Query(h)
	if info.RefCount != 2 {
		t.Fatalf("expected refcount 2, got %d", info.RefCount)
	}
	if err := b.DecRef(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, _ = b.Query(h)
	if info.RefCount != 1 {
		t.Fatalf("expected refcount 1, got %d", info.RefCount)
	}
}
