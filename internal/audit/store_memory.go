package audit

import (
	"context"
	"sync"

	id "whereabouts/pkg/domain"
)

// Store is the audit persistence interface. Append-only; events are never
// updated or deleted.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByQuarter(ctx context.Context, quarterID id.QuarterID) ([]Event, error)
}

// MemoryStore keeps audit events in memory, in append order.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByQuarter(_ context.Context, quarterID id.QuarterID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.QuarterID == quarterID {
			out = append(out, e)
		}
	}
	return out, nil
}
