package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure invitationService implements InvitationService
var _ driving.InvitationService = (*invitationService)(nil)

// invitationService implements the InvitationService interface
type invitationService struct {
	invitations driven.InvitationStore
	orgStore    driven.OrganizationStore
	userStore   driven.UserStore
	contexts    driving.ContextService
	logger      *slog.Logger
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	invitations driven.InvitationStore,
	orgStore driven.OrganizationStore,
	userStore driven.UserStore,
	contexts driving.ContextService,
	logger *slog.Logger,
) driving.InvitationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &invitationService{
		invitations: invitations,
		orgStore:    orgStore,
		userStore:   userStore,
		contexts:    contexts,
		logger:      logger.With("service", "invitations"),
	}
}

// Invite creates a pending invitation valid for seven days
func (s *invitationService) Invite(ctx context.Context, auth *domain.AuthContext, orgID string, req driving.InviteRequest) (*domain.Invitation, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}

	caller, err := s.orgStore.GetMember(ctx, orgID, auth.UserID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	org, err := s.orgStore.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if user, err := s.userStore.GetByEmail(ctx, email); err == nil {
		if _, err := s.orgStore.GetMember(ctx, orgID, user.ID); err == nil {
			return nil, domain.ErrAlreadyExists
		}
	}

	now := time.Now()
	inv := &domain.Invitation{
		Token:            uuid.NewString(),
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Email:            email,
		Role:             req.Role,
		InvitedBy:        caller.Name,
		Status:           domain.InvitationPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(domain.InvitationTTL),
	}
	if err := s.invitations.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invitation created", "organization_id", orgID, "role", req.Role)
	return inv, nil
}

// List lists the organization's invitations
func (s *invitationService) List(ctx context.Context, auth *domain.AuthContext, orgID string) ([]*domain.Invitation, error) {
	caller, err := s.orgStore.GetMember(ctx, orgID, auth.UserID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.invitations.ListByOrganization(ctx, orgID)
}

// View returns the public part of an open invitation
func (s *invitationService) View(ctx context.Context, token string) (*domain.InvitationView, error) {
	inv, err := s.open(ctx, token)
	if err != nil {
		return nil, err
	}
	return inv.View(), nil
}

// Accept joins the organization with the invited role
func (s *invitationService) Accept(ctx context.Context, auth *domain.AuthContext, token string) (*domain.Membership, error) {
	inv, err := s.open(ctx, token)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(inv.Email, auth.Email) {
		return nil, domain.ErrForbidden
	}

	org, err := s.orgStore.Get(ctx, inv.OrganizationID)
	if err != nil {
		return nil, err
	}

	role := inv.Role
	if existing, err := s.orgStore.GetMember(ctx, org.ID, auth.UserID); err == nil {
		role = existing.Role
	} else {
		user, err := s.userStore.Get(ctx, auth.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.orgStore.SaveMember(ctx, &domain.Member{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Name:           user.Name,
			Email:          user.Email,
			Role:           inv.Role,
			JoinedAt:       time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	inv.Status = domain.InvitationAccepted
	if err := s.invitations.Save(ctx, inv); err != nil {
		return nil, err
	}

	if err := s.contexts.RefreshUser(ctx, auth.UserID); err != nil {
		s.logger.Warn("failed to refresh contexts", "user_id", auth.UserID, "error", err)
	}
	s.logger.Info("invitation accepted", "organization_id", org.ID, "user_id", auth.UserID)

	return &domain.Membership{Organization: org, Role: role}, nil
}

// Decline marks the invitation declined
func (s *invitationService) Decline(ctx context.Context, auth *domain.AuthContext, token string) error {
	inv, err := s.open(ctx, token)
	if err != nil {
		return err
	}
	if !strings.EqualFold(inv.Email, auth.Email) {
		return domain.ErrForbidden
	}

	inv.Status = domain.InvitationDeclined
	return s.invitations.Save(ctx, inv)
}

func (s *invitationService) open(ctx context.Context, token string) (*domain.Invitation, error) {
	if token == "" {
		return nil, domain.ErrInvalidInput
	}
	inv, err := s.invitations.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !inv.IsOpen(time.Now()) {
		return nil, domain.ErrInvitationClosed
	}
	return inv, nil
}
