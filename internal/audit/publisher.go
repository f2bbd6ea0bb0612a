package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher hands events to a background worker through a buffered inbox.
// Emission is best-effort: when the inbox is full the event is dropped and
// logged rather than blocking a filing operation on the audit path.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// Worker drains the inbox and persists events. It runs until its context is
// cancelled.
type Worker struct {
	store Store
	inbox <-chan Event
}

// NewPipeline wires a publisher and its worker around a shared inbox.
func NewPipeline(store Store, logger *slog.Logger, buffer int) (*Publisher, *Worker) {
	if buffer <= 0 {
		buffer = 256
	}
	inbox := make(chan Event, buffer)
	return &Publisher{inbox: inbox, logger: logger}, &Worker{store: store, inbox: inbox}
}

// Emit queues an event for persistence, stamping id and timestamp if unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, event dropped", "action", event.Action)
		}
		return nil
	}
}

// Run consumes events until ctx is cancelled. Persistence failures stop the
// worker so the supervisor can surface them.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
