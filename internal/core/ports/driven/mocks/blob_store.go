package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockBlobStore keeps objects in memory
type MockBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// PutErr, when set, is returned by Put
	PutErr error
}

// NewMockBlobStore creates a new MockBlobStore
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		objects: make(map[string][]byte),
	}
}

func (m *MockBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MockBlobStore) Ping(ctx context.Context) error {
	return nil
}

// Has reports whether key is stored (for test assertions).
func (m *MockBlobStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}
