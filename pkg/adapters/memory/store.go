package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/humdrum/pkg/domain"
)

// Store implements ports.ModelStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Model
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Model),
	}
}

// Save persists a copy of the model.
func (s *Store) Save(ctx context.Context, sessionID string, model *domain.Model) error {
	copied := model.Snapshot()
	copied.SessionID = sessionID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves a copy of the model, so callers can't mutate the stored one.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return model.Snapshot(), nil
}

// Delete removes the model.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
