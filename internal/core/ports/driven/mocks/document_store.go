package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockDocumentStore is an in-memory DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *doc
	m.documents[doc.ID] = &stored
	return nil
}

func (m *MockDocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		stored := *doc
		m.documents[doc.ID] = &stored
	}
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *MockDocumentStore) ListByContexts(ctx context.Context, contextIDs []string) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(contextIDs))
	for _, id := range contextIDs {
		wanted[id] = true
	}
	result := make([]*domain.Document, 0)
	for _, doc := range m.documents {
		if wanted[doc.ContextID] {
			copied := *doc
			result = append(result, &copied)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *MockDocumentStore) ListStale(ctx context.Context, before time.Time) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Document
	for _, doc := range m.documents {
		if doc.Status == domain.DocumentStatusProcessing && doc.UploadedDate.Before(before) {
			copied := *doc
			result = append(result, &copied)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// Count returns the number of stored documents (for test assertions).
func (m *MockDocumentStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

func sortNewestFirst(docs []*domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UploadedDate.Equal(docs[j].UploadedDate) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].UploadedDate.After(docs[j].UploadedDate)
	})
}
