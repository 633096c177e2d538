package audit

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher hands events to the background worker without blocking the
// caller. When the inbox is full the event is dropped and counted in the log;
// matrix operations must never wait on the audit trail.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// NewPublisher wraps the worker inbox.
func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit stamps and queues an event.
func (p *Publisher) Emit(event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, event dropped",
			"action", string(event.Action),
			"product_id", event.ProductID,
		)
	}
}
