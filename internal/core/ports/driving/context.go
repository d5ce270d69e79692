package driving

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// ContextRegistry holds the contexts of one session and the active one.
// Exactly one context is active once the registry holds any.
type ContextRegistry interface {
	// ListContexts returns the contexts in a stable presentation order
	ListContexts() []domain.Context

	// Active returns the active context
	Active() domain.Context

	// SetActive switches the active context.
	// Returns domain.ErrUnknownContext and keeps the current one if id is not listed.
	SetActive(id string) (domain.ContextView, error)

	// Subscribe registers fn to receive the active view after every switch
	// or refresh. The returned func unsubscribes.
	Subscribe(fn func(domain.ContextView)) (unsubscribe func())

	// Replace swaps in a fresh set of contexts, keeping the active id when present
	Replace(contexts []domain.Context) error
}

// SetActiveContextRequest switches the active context
type SetActiveContextRequest struct {
	ContextID string `json:"context_id"`
}

// ContextService loads and tracks the contexts a session can act as
type ContextService interface {
	// Registry returns the session's registry, loading it on first use
	Registry(ctx context.Context, auth *domain.AuthContext) (ContextRegistry, error)

	// List reloads balances and returns the session's contexts
	List(ctx context.Context, auth *domain.AuthContext) ([]domain.Context, error)

	// Active returns the view of the session's active context
	Active(ctx context.Context, auth *domain.AuthContext) (*domain.ContextView, error)

	// SetActive switches and persists the session's active context
	SetActive(ctx context.Context, auth *domain.AuthContext, req SetActiveContextRequest) (*domain.ContextView, error)

	// Resolve returns a context the user can act as, by id
	Resolve(ctx context.Context, auth *domain.AuthContext, contextID string) (*domain.Context, error)

	// Refresh re-reads memberships and balances into the session's registry
	Refresh(ctx context.Context, auth *domain.AuthContext) error

	// RefreshUser re-reads the contexts of every loaded session of a user
	RefreshUser(ctx context.Context, userID string) error

	// AvailableFor lists the contexts a user can act as, without a session
	AvailableFor(ctx context.Context, userID string) ([]domain.Context, error)

	SessionReleaser
}
