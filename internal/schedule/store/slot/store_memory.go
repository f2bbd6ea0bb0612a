// Package slot persists daily slot assignments, keyed by (quarter, date).
package slot

import (
	"context"
	"sort"
	"sync"
	"time"

	"whereabouts/internal/domain"
	"whereabouts/internal/schedule/ports"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// MemoryStore is the in-memory SlotStore used in tests and local runs.
// Batches are atomic under the store mutex, mirroring the transactional
// semantics of the postgres implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	quarters map[id.QuarterID]map[string]*domain.DailySlotAssignment
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		quarters: make(map[id.QuarterID]map[string]*domain.DailySlotAssignment),
	}
}

func (s *MemoryStore) bucket(quarterID id.QuarterID) map[string]*domain.DailySlotAssignment {
	bucket, ok := s.quarters[quarterID]
	if !ok {
		bucket = make(map[string]*domain.DailySlotAssignment)
		s.quarters[quarterID] = bucket
	}
	return bucket
}

func (s *MemoryStore) Put(_ context.Context, slot *domain.DailySlotAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *slot
	copied.Date = domain.DateOnly(slot.Date)
	s.bucket(slot.QuarterID)[domain.DateKey(copied.Date)] = &copied
	return nil
}

func (s *MemoryStore) Find(_ context.Context, quarterID id.QuarterID, date time.Time) (*domain.DailySlotAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.quarters[quarterID][domain.DateKey(domain.DateOnly(date))]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *slot
	return &copied, nil
}

func (s *MemoryStore) ListByQuarter(_ context.Context, quarterID id.QuarterID) ([]*domain.DailySlotAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.quarters[quarterID]
	out := make([]*domain.DailySlotAssignment, 0, len(bucket))
	for _, slot := range bucket {
		copied := *slot
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *MemoryStore) CountComplete(_ context.Context, quarterID id.QuarterID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, slot := range s.quarters[quarterID] {
		if slot.IsComplete {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CommitBatch(_ context.Context, slots []*domain.DailySlotAssignment) error {
	if len(slots) > ports.MaxBatchItems {
		return sentinel.ErrBatchTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range slots {
		copied := *slot
		copied.Date = domain.DateOnly(slot.Date)
		s.bucket(slot.QuarterID)[domain.DateKey(copied.Date)] = &copied
	}
	return nil
}

func (s *MemoryStore) DeleteBatch(_ context.Context, quarterID id.QuarterID, dates []time.Time) error {
	if len(dates) > ports.MaxBatchItems {
		return sentinel.ErrBatchTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.quarters[quarterID]
	for _, date := range dates {
		delete(bucket, domain.DateKey(domain.DateOnly(date)))
	}
	return nil
}
