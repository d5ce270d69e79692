package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

// userService implements the UserService interface
type userService struct {
	userStore driven.UserStore
	contexts  driving.ContextService
}

// NewUserService creates a new UserService
func NewUserService(
	userStore driven.UserStore,
	contexts driving.ContextService,
) driving.UserService {
	return &userService{
		userStore: userStore,
		contexts:  contexts,
	}
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userStore.Get(ctx, id)
}

// UpdateProfile changes the caller's name and/or email
func (s *userService) UpdateProfile(ctx context.Context, id string, req driving.UpdateProfileRequest) (*domain.User, error) {
	stored, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user := *stored

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		user.Name = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if existing, _ := s.userStore.GetByEmail(ctx, email); existing != nil {
				return nil, domain.ErrAlreadyExists
			}
			user.Email = email
		}
	}
	user.UpdatedAt = time.Now()

	if err := s.userStore.Save(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetDefaultContext stores the context new sessions start in
func (s *userService) SetDefaultContext(ctx context.Context, auth *domain.AuthContext, req driving.SetDefaultContextRequest) (*domain.User, error) {
	if req.ContextID == "" {
		return nil, domain.ErrInvalidInput
	}

	available, err := s.contexts.AvailableFor(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	if !lo.ContainsBy(available, func(c domain.Context) bool { return c.ID == req.ContextID }) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContext, req.ContextID)
	}

	user, err := s.userStore.Get(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	user.DefaultContextID = req.ContextID
	user.UpdatedAt = time.Now()

	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// normalizeEmail lowercases and validates an email address
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	return email, nil
}
