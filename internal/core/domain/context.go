package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ContextType identifies the kind of acting identity
type ContextType string

const (
	ContextTypeIndividual   ContextType = "individual"
	ContextTypeOrganization ContextType = "organization"
	ContextTypeHelper       ContextType = "helper"
)

// IsValid reports whether t is one of the known context types.
func (t ContextType) IsValid() bool {
	switch t {
	case ContextTypeIndividual, ContextTypeOrganization, ContextTypeHelper:
		return true
	}
	return false
}

// Context is an identity a user can act as. It gates which credit account
// pays for processing and which documents are visible.
type Context struct {
	ID        string      `json:"id"`
	Type      ContextType `json:"type"`
	Name      string      `json:"name"`
	Credits   int64       `json:"credits"`
	Role      Role        `json:"role,omitempty"`       // organization only
	HelperFor string      `json:"helper_for,omitempty"` // helper only
	AccountID string      `json:"account_id"`
}

// Validate checks the per-type field rules.
func (c *Context) Validate() error {
	if c.ID == "" || c.Name == "" {
		return fmt.Errorf("%w: context id and name are required", ErrInvalidInput)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: unknown context type %q", ErrInvalidInput, c.Type)
	}
	if c.Credits < 0 {
		return fmt.Errorf("%w: negative credit balance", ErrInvalidInput)
	}

	isOrg := c.Type == ContextTypeOrganization
	if isOrg != (c.Role != "") {
		return fmt.Errorf("%w: role is set if and only if the context is an organization", ErrInvalidInput)
	}
	if isOrg && !c.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, c.Role)
	}

	isHelper := c.Type == ContextTypeHelper
	if isHelper != (c.HelperFor != "") {
		return fmt.Errorf("%w: helper_for is set if and only if the context is a helper", ErrInvalidInput)
	}
	return nil
}

// Label renders the human-readable name shown in the context switcher.
func (c *Context) Label() string {
	switch c.Type {
	case ContextTypeHelper:
		return "Helper for " + c.HelperFor
	case ContextTypeOrganization:
		return fmt.Sprintf("%s (%s)", c.Name, c.Role)
	default:
		return c.Name
	}
}

// SnapshotName is the name recorded on documents attributed to the context.
// Unlike Label it leaves out the organization role, which may change later.
func (c *Context) SnapshotName() string {
	if c.Type == ContextTypeHelper {
		return "Helper for " + c.HelperFor
	}
	return c.Name
}

// Icon names the glyph the dashboard shows next to the context.
func (c *Context) Icon() string {
	switch c.Type {
	case ContextTypeOrganization:
		return "building"
	case ContextTypeHelper:
		return "users"
	default:
		return "user"
	}
}

// CanPurchase reports whether credits may be bought while acting as this context.
func (c *Context) CanPurchase() bool {
	switch c.Type {
	case ContextTypeIndividual:
		return true
	case ContextTypeOrganization:
		return c.Role == RoleAdmin
	}
	return false
}

// FormatCredits renders a credit balance with thousands separators.
func FormatCredits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
