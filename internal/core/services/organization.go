package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure organizationService implements OrganizationService
var _ driving.OrganizationService = (*organizationService)(nil)

// organizationService implements the OrganizationService interface
type organizationService struct {
	orgStore     driven.OrganizationStore
	userStore    driven.UserStore
	accountStore driven.AccountStore
	contexts     driving.ContextService
	logger       *slog.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgStore driven.OrganizationStore,
	userStore driven.UserStore,
	accountStore driven.AccountStore,
	contexts driving.ContextService,
	logger *slog.Logger,
) driving.OrganizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &organizationService{
		orgStore:     orgStore,
		userStore:    userStore,
		accountStore: accountStore,
		contexts:     contexts,
		logger:       logger.With("service", "organizations"),
	}
}

// Create makes the caller the first admin of a new organization with an empty credit pool
func (s *organizationService) Create(ctx context.Context, auth *domain.AuthContext, req driving.CreateOrganizationRequest) (*driving.OrganizationDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", domain.ErrInvalidInput)
	}

	user, err := s.userStore.Get(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	org := &domain.Organization{
		ID:        generateID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &domain.CreditAccount{
		ID:        generateID(),
		Kind:      domain.AccountKindOrganization,
		OwnerID:   org.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	org.AccountID = account.ID

	if err := s.accountStore.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create credit account: %w", err)
	}
	if err := s.orgStore.Save(ctx, org); err != nil {
		return nil, err
	}
	if err := s.orgStore.SaveMember(ctx, &domain.Member{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           domain.RoleAdmin,
		JoinedAt:       now,
	}); err != nil {
		return nil, err
	}

	s.refresh(ctx, auth)
	s.logger.Info("organization created", "organization_id", org.ID, "user_id", user.ID)

	return &driving.OrganizationDetail{Organization: org, Role: domain.RoleAdmin}, nil
}

// Get returns an organization the caller belongs to
func (s *organizationService) Get(ctx context.Context, auth *domain.AuthContext, orgID string) (*driving.OrganizationDetail, error) {
	member, err := s.membership(ctx, orgID, auth.UserID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, orgID, member.Role)
}

// Rename changes the organization's name
func (s *organizationService) Rename(ctx context.Context, auth *domain.AuthContext, orgID string, req driving.RenameOrganizationRequest) (*driving.OrganizationDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", domain.ErrInvalidInput)
	}
	if _, err := s.requireAdmin(ctx, orgID, auth.UserID); err != nil {
		return nil, err
	}

	org, err := s.orgStore.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	org.Name = name
	org.UpdatedAt = time.Now()
	if err := s.orgStore.Save(ctx, org); err != nil {
		return nil, err
	}

	s.refreshMembers(ctx, orgID)
	return s.detail(ctx, orgID, domain.RoleAdmin)
}

// ListMembers lists the organization's members
func (s *organizationService) ListMembers(ctx context.Context, auth *domain.AuthContext, orgID string) ([]*domain.Member, error) {
	if _, err := s.membership(ctx, orgID, auth.UserID); err != nil {
		return nil, err
	}
	return s.orgStore.ListMembers(ctx, orgID)
}

// UpdateMemberRole changes a member's role, keeping at least one admin
func (s *organizationService) UpdateMemberRole(ctx context.Context, auth *domain.AuthContext, orgID, userID string, req driving.UpdateMemberRoleRequest) (*domain.Member, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}
	if _, err := s.requireAdmin(ctx, orgID, auth.UserID); err != nil {
		return nil, err
	}

	target, err := s.orgStore.GetMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == req.Role {
		return target, nil
	}
	if target.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, orgID, userID); err != nil {
			return nil, err
		}
	}

	target.Role = req.Role
	if err := s.orgStore.SaveMember(ctx, target); err != nil {
		return nil, err
	}

	s.refreshUser(ctx, userID)
	s.logger.Info("member role changed", "organization_id", orgID, "user_id", userID, "role", req.Role)
	return target, nil
}

// RemoveMember removes a member. Admins may remove anyone; members may leave.
func (s *organizationService) RemoveMember(ctx context.Context, auth *domain.AuthContext, orgID, userID string) error {
	caller, err := s.membership(ctx, orgID, auth.UserID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && userID != auth.UserID {
		return domain.ErrForbidden
	}

	target, err := s.orgStore.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, orgID, userID); err != nil {
			return err
		}
	}

	if err := s.orgStore.DeleteMember(ctx, orgID, userID); err != nil {
		return err
	}

	s.refreshUser(ctx, userID)
	s.logger.Info("member removed", "organization_id", orgID, "user_id", userID)
	return nil
}

// membership returns the caller's membership, or ErrNotFound so that
// non-members cannot probe organization ids.
func (s *organizationService) membership(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	return s.orgStore.GetMember(ctx, orgID, userID)
}

func (s *organizationService) requireAdmin(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	member, err := s.membership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return member, nil
}

// ensureAnotherAdmin fails with ErrLastAdmin when userID is the only admin.
func (s *organizationService) ensureAnotherAdmin(ctx context.Context, orgID, userID string) error {
	members, err := s.orgStore.ListMembers(ctx, orgID)
	if err != nil {
		return err
	}
	others := lo.CountBy(members, func(m *domain.Member) bool {
		return m.IsAdmin() && m.UserID != userID
	})
	if others == 0 {
		return domain.ErrLastAdmin
	}
	return nil
}

func (s *organizationService) detail(ctx context.Context, orgID string, role domain.Role) (*driving.OrganizationDetail, error) {
	org, err := s.orgStore.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	account, err := s.accountStore.Get(ctx, org.AccountID)
	if err != nil {
		return nil, err
	}
	return &driving.OrganizationDetail{Organization: org, Credits: account.Balance, Role: role}, nil
}

func (s *organizationService) refresh(ctx context.Context, auth *domain.AuthContext) {
	if err := s.contexts.Refresh(ctx, auth); err != nil {
		s.logger.Warn("failed to refresh contexts", "session_id", auth.SessionID, "error", err)
	}
}

// refreshUser reloads the contexts of every session of a member whose
// role or membership changed.
func (s *organizationService) refreshUser(ctx context.Context, userID string) {
	if err := s.contexts.RefreshUser(ctx, userID); err != nil {
		s.logger.Warn("failed to refresh contexts", "user_id", userID, "error", err)
	}
}

func (s *organizationService) refreshMembers(ctx context.Context, orgID string) {
	members, err := s.orgStore.ListMembers(ctx, orgID)
	if err != nil {
		s.logger.Warn("failed to list members for refresh", "organization_id", orgID, "error", err)
		return
	}
	for _, m := range members {
		s.refreshUser(ctx, m.UserID)
	}
}
