// Package template persists named weekly-pattern templates.
package template

import (
	"context"
	"sort"
	"sync"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// MemoryStore is the in-memory TemplateStore used in tests and local runs.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.TemplateID]*domain.Template
}

func NewMemory() *MemoryStore {
	return &MemoryStore{byID: make(map[id.TemplateID]*domain.Template)}
}

func copyTemplate(t *domain.Template) *domain.Template {
	copied := *t
	copied.Pattern = t.Pattern.Clone()
	return &copied
}

func (s *MemoryStore) Save(_ context.Context, template *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[template.ID] = copyTemplate(template)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, templateID id.TemplateID) (*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	template, ok := s.byID[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyTemplate(template), nil
}

func (s *MemoryStore) ListByAthlete(_ context.Context, athleteID id.AthleteID) ([]*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Template
	for _, template := range s.byID {
		if template.AthleteID == athleteID {
			out = append(out, copyTemplate(template))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) ClearDefault(_ context.Context, athleteID id.AthleteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, template := range s.byID {
		if template.AthleteID == athleteID && template.IsDefault {
			template.IsDefault = false
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, templateID id.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[templateID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, templateID)
	return nil
}
