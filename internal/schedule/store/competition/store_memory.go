// Package competition resolves competition references. The engine only ever
// reads competitions; ownership lives with the federation calendar system.
package competition

import (
	"context"
	"sync"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// MemoryStore is a read-mostly competition lookup seeded at wiring time.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.CompetitionID]domain.Competition
}

func NewMemory() *MemoryStore {
	return &MemoryStore{byID: make(map[id.CompetitionID]domain.Competition)}
}

// Seed loads competitions into the store, replacing by id.
func (s *MemoryStore) Seed(competitions ...domain.Competition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range competitions {
		s.byID[c.ID] = c
	}
}

func (s *MemoryStore) Get(_ context.Context, competitionID id.CompetitionID) (*domain.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[competitionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// ListByIDs resolves all ids, failing with sentinel.ErrNotFound if any is
// unknown. Order follows the input.
func (s *MemoryStore) ListByIDs(_ context.Context, ids []id.CompetitionID) ([]domain.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Competition, 0, len(ids))
	for _, competitionID := range ids {
		c, ok := s.byID[competitionID]
		if !ok {
			return nil, sentinel.ErrNotFound
		}
		out = append(out, c)
	}
	return out, nil
}
