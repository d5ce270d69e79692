package services

import (
	"context"

	"github.com/samber/lo"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	documentStore driven.DocumentStore
	contexts      driving.ContextService
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentStore driven.DocumentStore,
	contexts driving.ContextService,
) driving.DocumentService {
	return &documentService{
		documentStore: documentStore,
		contexts:      contexts,
	}
}

// List returns the ledger of every context the caller can act as, newest
// first, narrowed by the filter
func (s *documentService) List(ctx context.Context, auth *domain.AuthContext, filter domain.DocumentFilter) ([]*domain.Document, error) {
	ids, err := s.visibleContextIDs(ctx, auth)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentStore.ListByContexts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return domain.FilterDocuments(docs, filter), nil
}

// Get retrieves a document by ID if the caller can see it
func (s *documentService) Get(ctx context.Context, auth *domain.AuthContext, id string) (*domain.Document, error) {
	doc, err := s.documentStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.visibleContextIDs(ctx, auth)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(ids, doc.ContextID) {
		// Hide the existence of other tenants' documents
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (s *documentService) visibleContextIDs(ctx context.Context, auth *domain.AuthContext) ([]string, error) {
	contexts, err := s.contexts.List(ctx, auth)
	if err != nil {
		return nil, err
	}
	return lo.Map(contexts, func(c domain.Context, _ int) string {
		return c.ID
	}), nil
}
