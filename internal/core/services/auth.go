package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

const minPasswordLength = 8

// authService implements the AuthService interface
type authService struct {
	userStore     driven.UserStore
	sessionStore  driven.SessionStore
	accountStore  driven.AccountStore
	authAdapter   driven.AuthAdapter
	tokenTTL      time.Duration
	signupCredits int64
	releasers     []driving.SessionReleaser
}

// NewAuthService creates a new AuthService.
// Releasers are told about every session that ends so they can drop per-session state.
func NewAuthService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	accountStore driven.AccountStore,
	authAdapter driven.AuthAdapter,
	signupCredits int64,
	releasers ...driving.SessionReleaser,
) driving.AuthService {
	return &authService{
		userStore:     userStore,
		sessionStore:  sessionStore,
		accountStore:  accountStore,
		authAdapter:   authAdapter,
		tokenTTL:      24 * time.Hour,
		signupCredits: signupCredits,
		releasers:     releasers,
	}
}

// Signup registers a user with a personal credit account and logs them in
func (s *authService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.LoginResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	if existing, _ := s.userStore.GetByEmail(ctx, email); existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	passwordHash, err := s.authAdapter.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &domain.CreditAccount{
		ID:        generateID(),
		Kind:      domain.AccountKindUser,
		Balance:   s.signupCredits,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &domain.User{
		ID:           generateID(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		AccountID:    account.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	account.OwnerID = user.ID
	user.DefaultContextID = user.IndividualContextID()

	if err := s.accountStore.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create credit account: %w", err)
	}
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}

	return s.Authenticate(ctx, domain.LoginRequest{Email: email, Password: req.Password})
}

// Authenticate validates credentials and creates a session
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	// Validate input
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	// Get user by email
	user, err := s.userStore.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	// Check if user is active
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}

	// Verify password
	if !s.authAdapter.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	resp, err := s.startSession(ctx, user, user.DefaultContextID)
	if err != nil {
		return nil, err
	}

	// Update last login
	_ = s.userStore.UpdateLastLogin(ctx, user.ID)

	return resp, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	// Parse and validate JWT
	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	// Check expiration
	if time.Now().Unix() > claims.ExpiresAt {
		s.release(claims.SessionID)
		return nil, domain.ErrTokenExpired
	}

	// Verify session exists. A session that is gone or expired no longer
	// needs the state held for it.
	session, err := s.sessionStore.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.release(claims.SessionID)
		}
		return nil, domain.ErrSessionNotFound
	}

	if session.IsExpired() {
		s.release(claims.SessionID)
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		SessionID: claims.SessionID,
	}, nil
}

// RefreshToken generates a new token from a valid refresh token.
// The new session keeps the active context of the old one.
func (s *authService) RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error) {
	if req.RefreshToken == "" {
		return nil, domain.ErrTokenInvalid
	}

	// Find session by refresh token
	session, err := s.sessionStore.GetByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	// Check if session is expired
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// Get user for claims
	user, err := s.userStore.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	resp, err := s.startSession(ctx, user, session.ActiveContextID)
	if err != nil {
		return nil, err
	}

	// Delete old session
	_ = s.sessionStore.Delete(ctx, session.ID)
	s.release(session.ID)

	return resp, nil
}

// Logout invalidates a session
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil // Already invalid, nothing to do
	}

	s.release(claims.SessionID)
	return s.sessionStore.Delete(ctx, claims.SessionID)
}

// LogoutAll invalidates all sessions for a user
func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	s.releaseUser(ctx, userID)
	return s.sessionStore.DeleteByUser(ctx, userID)
}

// ChangePassword changes the password for an authenticated user
func (s *authService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return domain.ErrInvalidInput
	}
	if len(req.NewPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	user, err := s.userStore.Get(ctx, userID)
	if err != nil {
		return err
	}

	// Verify current password
	if !s.authAdapter.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	// Hash new password
	newHash, err := s.authAdapter.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()

	if err := s.userStore.Save(ctx, user); err != nil {
		return err
	}

	// Invalidate all sessions (force re-login)
	return s.LogoutAll(ctx, userID)
}

// startSession issues a token pair and stores the session.
func (s *authService) startSession(ctx context.Context, user *domain.User, activeContextID string) (*domain.LoginResponse, error) {
	sessionID := generateID()
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		SessionID: sessionID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	refreshToken := generateRefreshToken()

	session := &domain.Session{
		ID:              sessionID,
		UserID:          user.ID,
		Token:           token,
		RefreshToken:    refreshToken,
		ExpiresAt:       expiresAt,
		CreatedAt:       now,
		ActiveContextID: activeContextID,
	}

	if err := s.sessionStore.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user.ToSummary(),
	}, nil
}

func (s *authService) release(sessionID string) {
	for _, r := range s.releasers {
		r.ReleaseSession(sessionID)
	}
}

func (s *authService) releaseUser(ctx context.Context, userID string) {
	sessions, err := s.sessionStore.ListByUser(ctx, userID)
	if err != nil {
		return
	}
	for _, session := range sessions {
		s.release(session.ID)
	}
}

// Helper functions

func generateID() string {
	return domain.GenerateID()
}

func generateRefreshToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
