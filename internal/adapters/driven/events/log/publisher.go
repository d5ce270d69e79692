// Package log publishes document lifecycle events as structured log lines.
// Used when no broker is configured.
package log

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EventPublisher = (*Publisher)(nil)

// Publisher implements driven.EventPublisher on slog
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher creates a publisher; a nil logger means slog.Default()
func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger.With("component", "events")}
}

func (p *Publisher) Publish(ctx context.Context, event *domain.Event) error {
	attrs := []any{
		"event_id", event.ID,
		"document_id", event.DocumentID,
		"context_id", event.ContextID,
		"account_id", event.AccountID,
		"file_name", event.FileName,
	}
	if event.Credits != 0 {
		attrs = append(attrs, "credits", event.Credits)
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	p.logger.InfoContext(ctx, string(event.Type), attrs...)
	return nil
}

func (p *Publisher) Close() error { return nil }
