package driven

import "context"

// BlobStore holds uploaded file payloads until they are processed.
// Implementations: local filesystem (afero) or S3-compatible storage (MinIO).
type BlobStore interface {
	// Put stores data under key, replacing any existing object
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the object stored under key, or domain.ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object; missing objects are not an error
	Delete(ctx context.Context, key string) error

	// Ping checks if the storage backend is reachable
	Ping(ctx context.Context) error
}
