package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/ports"
)

// MockStore is an in-memory implementation of ModelStore for testing purposes.
type MockStore struct {
	data map[string]*domain.Model
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Model),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, model *domain.Model) error {
	m.data[sessionID] = model.Snapshot()
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Model, error) {
	model, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return model.Snapshot(), nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestModelStore_Contract(t *testing.T) {
	ports.RunModelStoreContract(t, NewMockStore())
}
