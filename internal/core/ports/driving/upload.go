package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// UploadService manages the upload batches of each session
type UploadService interface {
	// Create opens an empty batch
	Create(ctx context.Context, auth *domain.AuthContext) (*domain.UploadBatchSnapshot, error)

	// Get returns a snapshot of a batch
	Get(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error)

	// AddFiles admits the PDF candidates and reports the rest
	AddFiles(ctx context.Context, auth *domain.AuthContext, batchID string, source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error)

	// RemoveFile drops a pending file. Reports false when nothing was removed.
	RemoveFile(ctx context.Context, auth *domain.AuthContext, batchID, fileID string) (bool, error)

	// Start begins the staggered upload of every pending file,
	// attributed to the session's active context
	Start(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error)

	// Discard closes the batch and cancels its pending timers
	Discard(ctx context.Context, auth *domain.AuthContext, batchID string) error

	// ReleaseIdle closes the batches with no upload under way that were
	// last touched before the given time. Returns how many were closed.
	ReleaseIdle(before time.Time) int

	// Shutdown closes every batch
	Shutdown()

	SessionReleaser
}
