package driven

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// SessionStore keeps signed-in sessions together with the context each one
// is currently acting as. Entries expire at Session.ExpiresAt.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)

	// SetActiveContext switches the acting context of one session.
	// Other sessions of the same user are not affected.
	SetActiveContext(ctx context.Context, id string, contextID string) error

	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}
