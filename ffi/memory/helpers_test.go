package memory

import (
	"context"
	"testing"
	"time"

	"github.com/obinexus/libpolycall/eventbus"
)

type testBus struct {
	bus *eventbus.Bus
}

func newTestBus() *testBus {
	return &testBus{bus: eventbus.New(eventbus.NoopLogger())}
}

func (tb *testBus) SubscribeAudit(fn func(action string)) func() {
	return tb.bus.Subscribe(eventbus.TopicAuditEvent, func(_ context.Context, event eventbus.Event) error {
		ev, ok := event.(eventbus.AuditEvent)
		if !ok {
			return nil
		}
		fn(ev.Action)
		return nil
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}
