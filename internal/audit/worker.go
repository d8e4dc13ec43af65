package audit

import (
	"context"
	"log/slog"
)

// Worker drains a buffered event channel into a sink so the auth path never
// waits on the sink's latency. Events are dropped when the inbox is full:
// observability must not be able to block or fail a login.
type Worker struct {
	sink   Publisher
	inbox  chan Event
	logger *slog.Logger
}

// NewWorker builds a worker with the given buffer size.
func NewWorker(sink Publisher, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: make(chan Event, buffer), logger: logger}
}

// Emit enqueues an event without blocking. Implements Publisher, so the
// orchestrator can take a Worker wherever a sink is expected.
func (w *Worker) Emit(_ context.Context, event Event) error {
	select {
	case w.inbox <- stamp(event):
	default:
		w.logger.Warn("audit inbox full, dropping event", "action", event.Action)
	}
	return nil
}

// Run consumes the inbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit sink rejected event",
					"action", event.Action, "error", err)
			}
		}
	}
}
