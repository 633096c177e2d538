package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and persists them, optionally
// forwarding each one to Kafka. It keeps background processing testable
// without wiring queue implementations into the services.
type Worker struct {
	store    Store
	producer *Producer
	inbox    <-chan Event
	logger   *slog.Logger
}

// NewWorker builds a worker. producer may be nil when Kafka is not configured.
func NewWorker(store Store, producer *Producer, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, producer: producer, inbox: inbox, logger: logger}
}

// Run processes events until the context is cancelled. Persistence errors are
// logged and swallowed; the trail never blocks matrix operations.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event",
					"action", string(event.Action),
					"error", err.Error(),
				)
			}
			if w.producer != nil {
				w.producer.Publish(ctx, event)
			}
		}
	}
}
