package domain

import (
	"strings"
	"time"
)

// Context ids are derived from the record that grants them so that they
// stay stable across sessions.
const (
	individualContextPrefix   = "ind_"
	organizationContextPrefix = "org_"
	helperContextPrefix       = "hlp_"
)

// IndividualContextID returns the context id of a user's own identity.
func IndividualContextID(userID string) string {
	return individualContextPrefix + userID
}

// OrganizationContextID returns the context id for acting as a member of an organization.
func OrganizationContextID(orgID string) string {
	return organizationContextPrefix + orgID
}

// HelperContextID returns the context id for acting through a helper grant.
func HelperContextID(grantID string) string {
	return helperContextPrefix + grantID
}

// ParseContextID splits a context id into its type and the id of the
// underlying record (user, organization or helper grant).
func ParseContextID(id string) (ContextType, string, bool) {
	switch {
	case strings.HasPrefix(id, individualContextPrefix):
		return ContextTypeIndividual, strings.TrimPrefix(id, individualContextPrefix), true
	case strings.HasPrefix(id, organizationContextPrefix):
		return ContextTypeOrganization, strings.TrimPrefix(id, organizationContextPrefix), true
	case strings.HasPrefix(id, helperContextPrefix):
		return ContextTypeHelper, strings.TrimPrefix(id, helperContextPrefix), true
	}
	return "", "", false
}

// Organization is a team sharing one credit pool
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a user's membership in an organization
type Member struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
}

// IsAdmin checks if the member can manage the organization
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Membership pairs an organization with the user's role in it
type Membership struct {
	Organization *Organization `json:"organization"`
	Role         Role          `json:"role"`
}

// InvitationStatus tracks the answer to an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// InvitationTTL is how long an invitation link stays valid
const InvitationTTL = 7 * 24 * time.Hour

// Invitation asks a person to join an organization
type Invitation struct {
	Token            string           `json:"token"`
	OrganizationID   string           `json:"organization_id"`
	OrganizationName string           `json:"organization_name"`
	Email            string           `json:"email"`
	Role             Role             `json:"role"`
	InvitedBy        string           `json:"invited_by"`
	Status           InvitationStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

// IsOpen reports whether the invitation can still be answered.
func (i *Invitation) IsOpen(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}

// InvitationView is the public part of an invitation shown before login
type InvitationView struct {
	OrganizationName string `json:"organization_name"`
	Role             Role   `json:"role"`
	InvitedBy        string `json:"invited_by"`
}

// View returns the public part of the invitation.
func (i *Invitation) View() *InvitationView {
	return &InvitationView{
		OrganizationName: i.OrganizationName,
		Role:             i.Role,
		InvitedBy:        i.InvitedBy,
	}
}

// HelperGrant lets a helper act on behalf of a principal and spend the
// principal's personal credits.
type HelperGrant struct {
	ID            string    `json:"id"`
	PrincipalID   string    `json:"principal_id"`
	PrincipalName string    `json:"principal_name"`
	HelperID      string    `json:"helper_id"`
	HelperName    string    `json:"helper_name"`
	HelperEmail   string    `json:"helper_email"`
	CreatedAt     time.Time `json:"created_at"`
}
