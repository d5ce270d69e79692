package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.OrganizationStore = (*OrganizationStore)(nil)
	_ driven.InvitationStore   = (*InvitationStore)(nil)
	_ driven.HelperStore       = (*HelperStore)(nil)
)

// OrganizationStore implements driven.OrganizationStore using PostgreSQL
type OrganizationStore struct {
	db *DB
}

// NewOrganizationStore creates a new OrganizationStore
func NewOrganizationStore(db *DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

// Save creates or updates an organization
func (s *OrganizationStore) Save(ctx context.Context, org *domain.Organization) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`, org.ID, org.Name, org.AccountID, org.CreatedAt, org.UpdatedAt)
	return err
}

// Get retrieves an organization by ID
func (s *OrganizationStore) Get(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, account_id, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.AccountID, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListForUser lists the organizations a user belongs to, ordered by name
func (s *OrganizationStore) ListForUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.account_id, o.created_at, o.updated_at, m.role
		FROM organization_members m
		JOIN organizations o ON o.id = m.organization_id
		WHERE m.user_id = $1
		ORDER BY o.name ASC, o.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := []*domain.Membership{}
	for rows.Next() {
		var org domain.Organization
		var role domain.Role
		if err := rows.Scan(&org.ID, &org.Name, &org.AccountID, &org.CreatedAt, &org.UpdatedAt, &role); err != nil {
			return nil, err
		}
		memberships = append(memberships, &domain.Membership{Organization: &org, Role: role})
	}
	return memberships, rows.Err()
}

// SaveMember creates or updates a membership
func (s *OrganizationStore) SaveMember(ctx context.Context, member *domain.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organization_members (organization_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, member.OrganizationID, member.UserID, member.Role, member.JoinedAt)
	return err
}

const memberQuery = `
	SELECT m.organization_id, m.user_id, u.name, u.email, m.role, m.joined_at
	FROM organization_members m
	JOIN users u ON u.id = m.user_id
`

// GetMember retrieves one membership
func (s *OrganizationStore) GetMember(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	var m domain.Member
	err := s.db.QueryRowContext(ctx, memberQuery+` WHERE m.organization_id = $1 AND m.user_id = $2`, orgID, userID).
		Scan(&m.OrganizationID, &m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMembers lists the members of an organization, ordered by join time
func (s *OrganizationStore) ListMembers(ctx context.Context, orgID string) ([]*domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, memberQuery+` WHERE m.organization_id = $1 ORDER BY m.joined_at ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.Member{}
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// DeleteMember removes a membership
func (s *OrganizationStore) DeleteMember(ctx context.Context, orgID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// InvitationStore implements driven.InvitationStore using PostgreSQL
type InvitationStore struct {
	db *DB
}

// NewInvitationStore creates a new InvitationStore
func NewInvitationStore(db *DB) *InvitationStore {
	return &InvitationStore{db: db}
}

const invitationColumns = `token, organization_id, organization_name, email, role, invited_by, status, created_at, expires_at`

// Save creates or updates an invitation
func (s *InvitationStore) Save(ctx context.Context, inv *domain.Invitation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token) DO UPDATE SET
			status = EXCLUDED.status,
			expires_at = EXCLUDED.expires_at
	`,
		inv.Token,
		inv.OrganizationID,
		inv.OrganizationName,
		inv.Email,
		inv.Role,
		inv.InvitedBy,
		inv.Status,
		inv.CreatedAt,
		inv.ExpiresAt,
	)
	return err
}

// Get retrieves an invitation by token
func (s *InvitationStore) Get(ctx context.Context, token string) (*domain.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations, err := scanInvitations(rows)
	if err != nil {
		return nil, err
	}
	if len(invitations) == 0 {
		return nil, domain.ErrNotFound
	}
	return invitations[0], nil
}

// ListByOrganization lists invitations of an organization, newest first
func (s *InvitationStore) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvitations(rows)
}

func scanInvitations(rows *sql.Rows) ([]*domain.Invitation, error) {
	invitations := []*domain.Invitation{}
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(
			&inv.Token,
			&inv.OrganizationID,
			&inv.OrganizationName,
			&inv.Email,
			&inv.Role,
			&inv.InvitedBy,
			&inv.Status,
			&inv.CreatedAt,
			&inv.ExpiresAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, &inv)
	}
	return invitations, rows.Err()
}

// HelperStore implements driven.HelperStore using PostgreSQL
type HelperStore struct {
	db *DB
}

// NewHelperStore creates a new HelperStore
func NewHelperStore(db *DB) *HelperStore {
	return &HelperStore{db: db}
}

const grantColumns = `id, principal_id, principal_name, helper_id, helper_name, helper_email, created_at`

// Save creates or updates a grant.
// A second grant for the same principal and helper returns ErrAlreadyExists.
func (s *HelperStore) Save(ctx context.Context, grant *domain.HelperGrant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO helper_grants (`+grantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			principal_name = EXCLUDED.principal_name,
			helper_name = EXCLUDED.helper_name,
			helper_email = EXCLUDED.helper_email
	`,
		grant.ID,
		grant.PrincipalID,
		grant.PrincipalName,
		grant.HelperID,
		grant.HelperName,
		grant.HelperEmail,
		grant.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Get retrieves a grant by ID
func (s *HelperStore) Get(ctx context.Context, id string) (*domain.HelperGrant, error) {
	grants, err := s.query(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return nil, domain.ErrNotFound
	}
	return grants[0], nil
}

// ListByPrincipal lists the grants a principal has given, ordered by helper name
func (s *HelperStore) ListByPrincipal(ctx context.Context, principalID string) ([]*domain.HelperGrant, error) {
	return s.query(ctx, `WHERE principal_id = $1 ORDER BY helper_name ASC`, principalID)
}

// ListByHelper lists the grants a helper has received, ordered by principal name
func (s *HelperStore) ListByHelper(ctx context.Context, helperID string) ([]*domain.HelperGrant, error) {
	return s.query(ctx, `WHERE helper_id = $1 ORDER BY principal_name ASC`, helperID)
}

// Delete removes a grant
func (s *HelperStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM helper_grants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *HelperStore) query(ctx context.Context, where string, args ...interface{}) ([]*domain.HelperGrant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+grantColumns+` FROM helper_grants `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := []*domain.HelperGrant{}
	for rows.Next() {
		var g domain.HelperGrant
		if err := rows.Scan(
			&g.ID,
			&g.PrincipalID,
			&g.PrincipalName,
			&g.HelperID,
			&g.HelperName,
			&g.HelperEmail,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		grants = append(grants, &g)
	}
	return grants, rows.Err()
}
