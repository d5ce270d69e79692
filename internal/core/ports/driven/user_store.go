package driven

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// UserStore persists dashboard users.
// Emails are unique ignoring case; Save reports a clash as domain.ErrAlreadyExists.
type UserStore interface {
	Save(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastLogin stamps the user's last successful sign-in with the current time
	UpdateLastLogin(ctx context.Context, id string) error
}
