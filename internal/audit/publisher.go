package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher is the sink boundary. Emit must be cheap and must never fail the
// auth operation that produced the event; callers log and continue on error.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// stamp fills in the fields every sink needs.
func stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return event
}

// MemoryPublisher is an append-only in-memory sink for tests and dev mode.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, stamp(event))
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ByAction filters emitted events by action name.
func (p *MemoryPublisher) ByAction(action string) []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Event
	for _, e := range p.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// NopPublisher drops everything. Default when no sink is configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
