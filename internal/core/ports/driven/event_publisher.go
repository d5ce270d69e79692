package driven

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// EventPublisher emits document lifecycle events (Kafka or log)
type EventPublisher interface {
	// Publish sends an event; delivery is at-least-once where the backend supports it
	Publish(ctx context.Context, event *domain.Event) error

	// Close flushes and releases resources
	Close() error
}
