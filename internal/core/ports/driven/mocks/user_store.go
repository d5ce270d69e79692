package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockUserStore is a mock implementation of UserStore for testing
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}
