package driven

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// OrganizationStore handles organizations and their members (PostgreSQL)
type OrganizationStore interface {
	// Save creates or updates an organization
	Save(ctx context.Context, org *domain.Organization) error

	// Get retrieves an organization by ID
	Get(ctx context.Context, id string) (*domain.Organization, error)

	// ListForUser lists the organizations a user belongs to, ordered by name
	ListForUser(ctx context.Context, userID string) ([]*domain.Membership, error)

	// SaveMember creates or updates a membership
	SaveMember(ctx context.Context, member *domain.Member) error

	// GetMember retrieves one membership
	GetMember(ctx context.Context, orgID, userID string) (*domain.Member, error)

	// ListMembers lists the members of an organization, ordered by join time
	ListMembers(ctx context.Context, orgID string) ([]*domain.Member, error)

	// DeleteMember removes a membership
	DeleteMember(ctx context.Context, orgID, userID string) error
}

// InvitationStore handles organization invitations (PostgreSQL)
type InvitationStore interface {
	// Save creates or updates an invitation
	Save(ctx context.Context, invitation *domain.Invitation) error

	// Get retrieves an invitation by token
	Get(ctx context.Context, token string) (*domain.Invitation, error)

	// ListByOrganization lists invitations of an organization, newest first
	ListByOrganization(ctx context.Context, orgID string) ([]*domain.Invitation, error)
}

// HelperStore handles helper grants (PostgreSQL)
type HelperStore interface {
	// Save creates or updates a grant
	Save(ctx context.Context, grant *domain.HelperGrant) error

	// Get retrieves a grant by ID
	Get(ctx context.Context, id string) (*domain.HelperGrant, error)

	// ListByPrincipal lists the grants a principal has given
	ListByPrincipal(ctx context.Context, principalID string) ([]*domain.HelperGrant, error)

	// ListByHelper lists the grants a helper has received, ordered by principal name
	ListByHelper(ctx context.Context, helperID string) ([]*domain.HelperGrant, error)

	// Delete removes a grant
	Delete(ctx context.Context, id string) error
}
