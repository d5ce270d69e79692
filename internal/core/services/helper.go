package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure helperService implements HelperService
var _ driving.HelperService = (*helperService)(nil)

// helperService implements the HelperService interface
type helperService struct {
	helpers   driven.HelperStore
	userStore driven.UserStore
	contexts  driving.ContextService
	logger    *slog.Logger
}

// NewHelperService creates a new HelperService
func NewHelperService(
	helpers driven.HelperStore,
	userStore driven.UserStore,
	contexts driving.ContextService,
	logger *slog.Logger,
) driving.HelperService {
	if logger == nil {
		logger = slog.Default()
	}
	return &helperService{
		helpers:   helpers,
		userStore: userStore,
		contexts:  contexts,
		logger:    logger.With("service", "helpers"),
	}
}

// Grant lets a registered user act on the caller's behalf
func (s *helperService) Grant(ctx context.Context, auth *domain.AuthContext, req driving.GrantHelperRequest) (*domain.HelperGrant, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	helper, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if helper.ID == auth.UserID {
		return nil, fmt.Errorf("%w: cannot grant helper access to yourself", domain.ErrInvalidInput)
	}

	principal, err := s.userStore.Get(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}

	grant := &domain.HelperGrant{
		ID:            generateID(),
		PrincipalID:   principal.ID,
		PrincipalName: principal.Name,
		HelperID:      helper.ID,
		HelperName:    helper.Name,
		HelperEmail:   helper.Email,
		CreatedAt:     time.Now(),
	}
	if err := s.helpers.Save(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.Info("helper granted", "principal_id", principal.ID, "helper_id", helper.ID)
	return grant, nil
}

// List lists grants given and received by the caller
func (s *helperService) List(ctx context.Context, auth *domain.AuthContext) (*driving.HelperGrants, error) {
	granted, err := s.helpers.ListByPrincipal(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	received, err := s.helpers.ListByHelper(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	if granted == nil {
		granted = []*domain.HelperGrant{}
	}
	if received == nil {
		received = []*domain.HelperGrant{}
	}
	return &driving.HelperGrants{Granted: granted, Received: received}, nil
}

// Revoke removes a grant. Either side of the grant may revoke it.
func (s *helperService) Revoke(ctx context.Context, auth *domain.AuthContext, grantID string) error {
	grant, err := s.helpers.Get(ctx, grantID)
	if err != nil {
		return err
	}
	if grant.PrincipalID != auth.UserID && grant.HelperID != auth.UserID {
		return domain.ErrNotFound
	}

	if err := s.helpers.Delete(ctx, grantID); err != nil {
		return err
	}

	if err := s.contexts.RefreshUser(ctx, grant.HelperID); err != nil {
		s.logger.Warn("failed to refresh contexts", "user_id", grant.HelperID, "error", err)
	}
	s.logger.Info("helper revoked", "grant_id", grantID)
	return nil
}
