package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// DocumentStore handles document ledger persistence (PostgreSQL)
type DocumentStore interface {
	// Save creates or updates a document
	Save(ctx context.Context, doc *domain.Document) error

	// SaveBatch saves multiple documents in a transaction
	SaveBatch(ctx context.Context, docs []*domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// ListByContexts lists documents attributed to any of the contexts, newest first
	ListByContexts(ctx context.Context, contextIDs []string) ([]*domain.Document, error)

	// ListStale lists documents still processing that were uploaded before the cutoff
	ListStale(ctx context.Context, before time.Time) ([]*domain.Document, error)
}
