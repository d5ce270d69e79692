package driving

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// DocumentService provides read-only access to the document ledger
type DocumentService interface {
	// List returns the documents of every context the caller can act as,
	// newest first, narrowed by the filter
	List(ctx context.Context, auth *domain.AuthContext, filter domain.DocumentFilter) ([]*domain.Document, error)

	// Get retrieves one document visible to the caller
	Get(ctx context.Context, auth *domain.AuthContext, id string) (*domain.Document, error)
}
