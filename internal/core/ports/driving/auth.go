package driving

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// AuthService handles user authentication
type AuthService interface {
	// Signup registers a user with a personal credit account and creates a session
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.LoginResponse, error)

	// Authenticate validates credentials and creates a session
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// RefreshToken generates a new token from a valid refresh token
	RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)

	// Logout invalidates a session and releases its per-session state
	Logout(ctx context.Context, token string) error

	// LogoutAll invalidates all sessions for a user
	LogoutAll(ctx context.Context, userID string) error

	// ChangePassword changes the password for an authenticated user
	ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}

// SessionReleaser drops state held for a session when it ends.
// Implemented by services that keep per-session state in memory.
type SessionReleaser interface {
	// ReleaseSession drops the state held for the session
	ReleaseSession(sessionID string)

	// HeldSessions lists the sessions that currently hold state
	HeldSessions() []string
}
