// Package quarter persists quarterly filing records.
package quarter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// MemoryStore is the in-memory QuarterStore used in tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[id.QuarterID]*domain.Quarter
	byPeriod map[string]id.QuarterID
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[id.QuarterID]*domain.Quarter),
		byPeriod: make(map[string]id.QuarterID),
	}
}

func periodKey(athleteID id.AthleteID, year int, name domain.QuarterName) string {
	return fmt.Sprintf("%s|%d|%s", athleteID, year, name)
}

func (s *MemoryStore) Create(_ context.Context, quarter *domain.Quarter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey(quarter.AthleteID, quarter.Year, quarter.Name)
	if _, exists := s.byPeriod[key]; exists {
		return sentinel.ErrConflict
	}

	copied := *quarter
	s.byID[quarter.ID] = &copied
	s.byPeriod[key] = quarter.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quarter, ok := s.byID[quarterID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *quarter
	return &copied, nil
}

func (s *MemoryStore) Update(_ context.Context, quarter *domain.Quarter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[quarter.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *quarter
	s.byID[quarter.ID] = &copied
	return nil
}

func (s *MemoryStore) FindByPeriod(_ context.Context, athleteID id.AthleteID, year int, name domain.QuarterName) (*domain.Quarter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quarterID, ok := s.byPeriod[periodKey(athleteID, year, name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[quarterID]
	return &copied, nil
}

func (s *MemoryStore) ListByAthlete(_ context.Context, athleteID id.AthleteID) ([]*domain.Quarter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Quarter
	for _, quarter := range s.byID {
		if quarter.AthleteID == athleteID {
			copied := *quarter
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}
