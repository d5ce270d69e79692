package domain

import "time"

// Role defines a member's permission level inside an organization
type Role string

const (
	RoleAdmin  Role = "admin"  // Manage members, invitations, credits
	RoleMember Role = "member" // Upload and view documents
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents a registered person
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // Never serialize
	Name             string     `json:"name"`
	AccountID        string     `json:"account_id"` // personal credit account
	DefaultContextID string     `json:"default_context_id,omitempty"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// UserSummary provides a safe view of user data (no password hash)
type UserSummary struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	DefaultContextID string     `json:"default_context_id,omitempty"`
	Active           bool       `json:"active"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// ToSummary converts a User to UserSummary
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		DefaultContextID: u.DefaultContextID,
		Active:           u.Active,
		LastLoginAt:      u.LastLoginAt,
	}
}

// IndividualContextID is the id of the user's own context.
func (u *User) IndividualContextID() string {
	return IndividualContextID(u.ID)
}
