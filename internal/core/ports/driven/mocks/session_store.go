package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockSessionStore is a mock implementation of SessionStore for testing
type MockSessionStore struct {
	mu             sync.RWMutex
	sessions       map[string]*domain.Session
	byRefreshToken map[string]string
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions:       make(map[string]*domain.Session),
		byRefreshToken: make(map[string]string),
	}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	if session.RefreshToken != "" {
		m.byRefreshToken[session.RefreshToken] = session.ID
	}
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byRefreshToken[refreshToken]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionStore) SetActiveContext(ctx context.Context, id string, contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ActiveContextID = contextID
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil
	}
	delete(m.byRefreshToken, session.RefreshToken)
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionStore) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.byRefreshToken, session.RefreshToken)
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *MockSessionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result, nil
}

// Helper methods for testing

func (m *MockSessionStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*domain.Session)
	m.byRefreshToken = make(map[string]string)
}

func (m *MockSessionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
