package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// SubmitFile is one payload handed to processing
type SubmitFile struct {
	Name string
	Data []byte
}

// SubmitRequest hands payloads to processing, attributed to a context
type SubmitRequest struct {
	Context domain.Context
	UserID  string
	Files   []SubmitFile
}

// SubmitHandle tracks one accepted file
type SubmitHandle struct {
	FileName   string                `json:"file_name"`
	DocumentID string                `json:"document_id"`
	Status     domain.DocumentStatus `json:"status"`
}

// ProcessingService turns uploaded PDFs into charged ledger entries
type ProcessingService interface {
	// Submit stores the payloads, records them as processing and queues them.
	// Returns one handle per file in request order.
	Submit(ctx context.Context, req SubmitRequest) ([]SubmitHandle, error)

	// Process counts pages and charges the attributed account.
	// A returned error means the attempt should be retried.
	Process(ctx context.Context, documentID string) error

	// Reconcile fails documents stuck in processing for longer than olderThan
	Reconcile(ctx context.Context, olderThan time.Duration) (int, error)
}
