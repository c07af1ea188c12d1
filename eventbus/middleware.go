package eventbus

import (
	"context"
	"log"
)

// LoggingMiddleware logs every event published through the bus.
type LoggingMiddleware struct{}

// NewLoggingMiddleware creates a LoggingMiddleware.
func NewLoggingMiddleware() *LoggingMiddleware {
	return &LoggingMiddleware{}
}

// Before logs the event topic before delivery.
func (m *LoggingMiddleware) Before(ctx context.Context, event Event) (Event, error) {
	log.Printf("eventbus: publishing %s", event.Topic())
	return event, nil
}

// After logs the outcome once delivery completes.
func (m *LoggingMiddleware) After(ctx context.Context, event Event, err error) {
	if err != nil {
		log.Printf("eventbus: %s delivery reported error: %v", event.Topic(), err)
		return
	}
	log.Printf("eventbus: %s delivered", event.Topic())
}
