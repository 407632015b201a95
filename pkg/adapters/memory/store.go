package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Extraction
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Extraction),
	}
}

// Save persists the extraction in memory.
func (s *Store) Save(ctx context.Context, ext *domain.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ext.Workflow] = clone(ext)
	return nil
}

// Load retrieves the extraction from memory.
func (s *Store) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ext, ok := s.data[workflow]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	return clone(ext), nil
}

// Delete removes the extraction.
func (s *Store) Delete(ctx context.Context, workflow string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, workflow)
	return nil
}

// List returns the stored workflow names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workflows := make([]string, 0, len(s.data))
	for w := range s.data {
		workflows = append(workflows, w)
	}
	sort.Strings(workflows)
	return workflows, nil
}

// clone copies the maps so callers cannot mutate the stored extraction.
// Path elements are immutable and are shared.
func clone(ext *domain.Extraction) *domain.Extraction {
	c := *ext
	c.Actions = maps.Clone(ext.Actions)
	c.Failures = maps.Clone(ext.Failures)
	return &c
}
