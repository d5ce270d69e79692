package driving

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// CreateOrganizationRequest creates an organization owned by the caller
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// RenameOrganizationRequest changes an organization's name
type RenameOrganizationRequest struct {
	Name string `json:"name"`
}

// UpdateMemberRoleRequest changes a member's role
type UpdateMemberRoleRequest struct {
	Role domain.Role `json:"role"`
}

// InviteRequest invites a person by email
type InviteRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// OrganizationDetail is an organization with its credit balance
type OrganizationDetail struct {
	*domain.Organization
	Credits int64       `json:"credits"`
	Role    domain.Role `json:"role"`
}

// OrganizationService manages organizations and their members
type OrganizationService interface {
	// Create makes the caller the first admin of a new organization
	Create(ctx context.Context, auth *domain.AuthContext, req CreateOrganizationRequest) (*OrganizationDetail, error)

	// Get returns an organization the caller belongs to
	Get(ctx context.Context, auth *domain.AuthContext, orgID string) (*OrganizationDetail, error)

	// Rename changes the name (admin only)
	Rename(ctx context.Context, auth *domain.AuthContext, orgID string, req RenameOrganizationRequest) (*OrganizationDetail, error)

	// ListMembers lists members (any member)
	ListMembers(ctx context.Context, auth *domain.AuthContext, orgID string) ([]*domain.Member, error)

	// UpdateMemberRole changes a member's role (admin only, keeps one admin)
	UpdateMemberRole(ctx context.Context, auth *domain.AuthContext, orgID, userID string, req UpdateMemberRoleRequest) (*domain.Member, error)

	// RemoveMember removes a member (admin only, keeps one admin)
	RemoveMember(ctx context.Context, auth *domain.AuthContext, orgID, userID string) error
}

// InvitationService manages invitations to organizations
type InvitationService interface {
	// Invite creates a pending invitation (admin only)
	Invite(ctx context.Context, auth *domain.AuthContext, orgID string, req InviteRequest) (*domain.Invitation, error)

	// List lists an organization's invitations (admin only)
	List(ctx context.Context, auth *domain.AuthContext, orgID string) ([]*domain.Invitation, error)

	// View returns the public part of an open invitation
	View(ctx context.Context, token string) (*domain.InvitationView, error)

	// Accept joins the organization. The caller's email must match the invitation.
	Accept(ctx context.Context, auth *domain.AuthContext, token string) (*domain.Membership, error)

	// Decline marks the invitation declined
	Decline(ctx context.Context, auth *domain.AuthContext, token string) error
}

// GrantHelperRequest gives a registered user helper access
type GrantHelperRequest struct {
	Email string `json:"email"`
}

// HelperGrants lists the grants a user has given and received
type HelperGrants struct {
	Granted  []*domain.HelperGrant `json:"granted"`
	Received []*domain.HelperGrant `json:"received"`
}

// HelperService manages helper grants
type HelperService interface {
	// Grant lets the user with the given email act on the caller's behalf
	Grant(ctx context.Context, auth *domain.AuthContext, req GrantHelperRequest) (*domain.HelperGrant, error)

	// List lists grants given and received by the caller
	List(ctx context.Context, auth *domain.AuthContext) (*HelperGrants, error)

	// Revoke removes a grant the caller gave (or received)
	Revoke(ctx context.Context, auth *domain.AuthContext, grantID string) error
}
