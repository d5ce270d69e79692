package mocks

import (
	"context"
	"sync"
	"time"
)

// MockDistributedLock keeps locks in memory with wall-clock expiry.
type MockDistributedLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	taken []string

	// TryLockErr, when set, fails every TryLock
	TryLockErr error
}

// NewMockDistributedLock creates an empty lock table.
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{held: make(map[string]time.Time)}
}

func (m *MockDistributedLock) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TryLockErr != nil {
		return false, m.TryLockErr
	}
	if until, ok := m.held[name]; ok && time.Now().Before(until) {
		return false, nil
	}
	m.held[name] = time.Now().Add(ttl)
	m.taken = append(m.taken, name)
	return true, nil
}

func (m *MockDistributedLock) Unlock(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}

func (m *MockDistributedLock) Ping(ctx context.Context) error {
	return nil
}

// Hold marks name as held by someone else for ttl.
func (m *MockDistributedLock) Hold(name string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[name] = time.Now().Add(ttl)
}

// IsHeld reports whether name is currently locked.
func (m *MockDistributedLock) IsHeld(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.held[name]
	return ok && time.Now().Before(until)
}

// Taken returns every successful TryLock in order.
func (m *MockDistributedLock) Taken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.taken...)
}
