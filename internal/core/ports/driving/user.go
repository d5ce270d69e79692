package driving

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// UpdateProfileRequest changes the caller's own profile
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// SetDefaultContextRequest picks the context new sessions start in
type SetDefaultContextRequest struct {
	ContextID string `json:"context_id"`
}

// UserService manages the caller's own profile
type UserService interface {
	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// UpdateProfile changes name and/or email
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*domain.User, error)

	// SetDefaultContext stores the context new sessions start in.
	// The context must be one the user can act as.
	SetDefaultContext(ctx context.Context, auth *domain.AuthContext, req SetDefaultContextRequest) (*domain.User, error)
}
