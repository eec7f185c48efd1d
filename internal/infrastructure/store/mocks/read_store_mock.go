package mocks

import (
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/readmodel"
)

// MockReadStore wraps the in-memory read store with injectable failures so
// tests can exercise the infrastructure-error paths.
type MockReadStore struct {
	*store.ReadStore

	GetErr    error
	GetAllErr error
	SetErr    error
}

// NewMockReadStore creates a new MockReadStore
func NewMockReadStore() *MockReadStore {
	return &MockReadStore{ReadStore: store.NewReadStore()}
}

func (m *MockReadStore) Get(collection, id string) (any, bool, error) {
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	return m.ReadStore.Get(collection, id)
}

func (m *MockReadStore) GetAll(collection string) ([]any, error) {
	if m.GetAllErr != nil {
		return nil, m.GetAllErr
	}
	return m.ReadStore.GetAll(collection)
}

func (m *MockReadStore) Set(collection, id string, data any) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	return m.ReadStore.Set(collection, id, data)
}

func (m *MockReadStore) GetUserByEmail(email string) (*readmodel.UserReadModel, bool, error) {
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	return m.ReadStore.GetUserByEmail(email)
}
