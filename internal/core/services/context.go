package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure contextService implements ContextService
var _ driving.ContextService = (*contextService)(nil)

// contextService keeps one registry per session. The set of contexts is read
// from the identity and billing stores when the session first needs it and
// again after credit-affecting operations.
type contextService struct {
	userStore    driven.UserStore
	orgStore     driven.OrganizationStore
	helperStore  driven.HelperStore
	accountStore driven.AccountStore
	sessionStore driven.SessionStore
	logger       *slog.Logger

	mu         sync.Mutex
	registries map[string]*sessionRegistry
}

// sessionRegistry is a cached registry together with the user that owns it.
type sessionRegistry struct {
	userID string
	reg    driving.ContextRegistry
}

// ContextServiceConfig holds the dependencies of the context service
type ContextServiceConfig struct {
	UserStore    driven.UserStore
	OrgStore     driven.OrganizationStore
	HelperStore  driven.HelperStore
	AccountStore driven.AccountStore
	SessionStore driven.SessionStore
	Logger       *slog.Logger
}

// NewContextService creates a new ContextService
func NewContextService(cfg ContextServiceConfig) driving.ContextService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &contextService{
		userStore:    cfg.UserStore,
		orgStore:     cfg.OrgStore,
		helperStore:  cfg.HelperStore,
		accountStore: cfg.AccountStore,
		sessionStore: cfg.SessionStore,
		logger:       logger.With("service", "contexts"),
		registries:   make(map[string]*sessionRegistry),
	}
}

// Registry returns the session's registry, loading it on first use.
func (s *contextService) Registry(ctx context.Context, auth *domain.AuthContext) (driving.ContextRegistry, error) {
	s.mu.Lock()
	entry, ok := s.registries[auth.SessionID]
	s.mu.Unlock()
	if ok {
		return entry.reg, nil
	}

	contexts, err := s.AvailableFor(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}

	activeID, err := s.initialContextID(ctx, auth)
	if err != nil {
		return nil, err
	}

	reg, err := NewContextRegistry(contexts, activeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.registries[auth.SessionID]; ok {
		return existing.reg, nil
	}

	logger := s.logger.With("session_id", auth.SessionID, "user_id", auth.UserID)
	reg.Subscribe(func(view domain.ContextView) {
		logger.Debug("active context changed", "context_id", view.ID, "label", view.Label)
	})
	s.registries[auth.SessionID] = &sessionRegistry{userID: auth.UserID, reg: reg}

	logger.Info("context registry loaded", "contexts", len(contexts), "active", reg.Active().ID)
	return reg, nil
}

// List reloads balances and returns the session's contexts.
func (s *contextService) List(ctx context.Context, auth *domain.AuthContext) ([]domain.Context, error) {
	if err := s.Refresh(ctx, auth); err != nil {
		return nil, err
	}
	reg, err := s.Registry(ctx, auth)
	if err != nil {
		return nil, err
	}
	return reg.ListContexts(), nil
}

// Active returns the view of the session's active context.
func (s *contextService) Active(ctx context.Context, auth *domain.AuthContext) (*domain.ContextView, error) {
	reg, err := s.Registry(ctx, auth)
	if err != nil {
		return nil, err
	}
	view := domain.BindContext(reg.Active())
	return &view, nil
}

// SetActive switches the session's active context and persists the choice.
func (s *contextService) SetActive(ctx context.Context, auth *domain.AuthContext, req driving.SetActiveContextRequest) (*domain.ContextView, error) {
	if req.ContextID == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := s.Refresh(ctx, auth); err != nil {
		return nil, err
	}
	reg, err := s.Registry(ctx, auth)
	if err != nil {
		return nil, err
	}

	view, err := reg.SetActive(req.ContextID)
	if err != nil {
		return nil, err
	}

	if err := s.sessionStore.SetActiveContext(ctx, auth.SessionID, view.ID); err != nil {
		s.logger.Warn("failed to persist active context",
			"session_id", auth.SessionID,
			"context_id", view.ID,
			"error", err,
		)
	}
	return &view, nil
}

// Resolve returns a context the user can act as, by id. The session's
// contexts are re-read first so that a revoked grant or a lost membership
// no longer resolves.
func (s *contextService) Resolve(ctx context.Context, auth *domain.AuthContext, contextID string) (*domain.Context, error) {
	if err := s.Refresh(ctx, auth); err != nil {
		return nil, err
	}
	reg, err := s.Registry(ctx, auth)
	if err != nil {
		return nil, err
	}
	c, ok := lo.Find(reg.ListContexts(), func(c domain.Context) bool {
		return c.ID == contextID
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContext, contextID)
	}
	return &c, nil
}

// Refresh re-reads memberships and balances into the session's registry.
func (s *contextService) Refresh(ctx context.Context, auth *domain.AuthContext) error {
	s.mu.Lock()
	entry, ok := s.registries[auth.SessionID]
	s.mu.Unlock()
	if !ok {
		// Loading reads fresh state anyway
		_, err := s.Registry(ctx, auth)
		return err
	}

	contexts, err := s.AvailableFor(ctx, auth.UserID)
	if err != nil {
		return err
	}
	return s.replace(ctx, auth.SessionID, entry.reg, contexts)
}

// RefreshUser re-reads the contexts of every loaded session of a user.
// Services call it after changing another user's memberships or grants.
func (s *contextService) RefreshUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	sessions := make(map[string]driving.ContextRegistry)
	for sessionID, entry := range s.registries {
		if entry.userID == userID {
			sessions[sessionID] = entry.reg
		}
	}
	s.mu.Unlock()
	if len(sessions) == 0 {
		return nil
	}

	contexts, err := s.AvailableFor(ctx, userID)
	if err != nil {
		return err
	}
	var errs []error
	for sessionID, reg := range sessions {
		if err := s.replace(ctx, sessionID, reg, contexts); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", sessionID, err))
		}
	}
	s.logger.Debug("refreshed user contexts", "user_id", userID, "sessions", len(sessions))
	return errors.Join(errs...)
}

// replace swaps the contexts of one registry. When the active context is
// gone the registry falls back to the first one, and that choice is persisted.
func (s *contextService) replace(ctx context.Context, sessionID string, reg driving.ContextRegistry, contexts []domain.Context) error {
	before := reg.Active().ID
	if err := reg.Replace(contexts); err != nil {
		return err
	}
	after := reg.Active().ID
	if before == after {
		return nil
	}

	s.logger.Info("active context no longer available",
		"session_id", sessionID,
		"context_id", before,
		"fallback", after,
	)
	if err := s.sessionStore.SetActiveContext(ctx, sessionID, after); err != nil {
		s.logger.Warn("failed to persist active context",
			"session_id", sessionID,
			"context_id", after,
			"error", err,
		)
	}
	return nil
}

// ReleaseSession drops the session's registry.
func (s *contextService) ReleaseSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registries, sessionID)
}

// HeldSessions returns the sessions with a loaded registry.
func (s *contextService) HeldSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Keys(s.registries)
}

// AvailableFor lists the contexts a user can act as: the individual context
// first, then organizations by name, then helper grants by principal name.
func (s *contextService) AvailableFor(ctx context.Context, userID string) ([]domain.Context, error) {
	user, err := s.userStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	individual, err := s.accountContext(ctx, domain.Context{
		ID:        user.IndividualContextID(),
		Type:      domain.ContextTypeIndividual,
		Name:      user.Name,
		AccountID: user.AccountID,
	})
	if err != nil {
		return nil, err
	}
	contexts := []domain.Context{individual}

	memberships, err := s.orgStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	for _, m := range sortedMemberships(memberships) {
		c, err := s.accountContext(ctx, domain.Context{
			ID:        domain.OrganizationContextID(m.Organization.ID),
			Type:      domain.ContextTypeOrganization,
			Name:      m.Organization.Name,
			Role:      m.Role,
			AccountID: m.Organization.AccountID,
		})
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, c)
	}

	grants, err := s.helperStore.ListByHelper(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list helper grants: %w", err)
	}
	for _, g := range sortedGrants(grants) {
		principal, err := s.userStore.Get(ctx, g.PrincipalID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		c, err := s.accountContext(ctx, domain.Context{
			ID:        domain.HelperContextID(g.ID),
			Type:      domain.ContextTypeHelper,
			Name:      principal.Name,
			HelperFor: principal.Name,
			AccountID: principal.AccountID,
		})
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, c)
	}

	return contexts, nil
}

// accountContext fills in the balance of the context's credit account.
func (s *contextService) accountContext(ctx context.Context, c domain.Context) (domain.Context, error) {
	account, err := s.accountStore.Get(ctx, c.AccountID)
	if err != nil {
		return domain.Context{}, fmt.Errorf("load account %s: %w", c.AccountID, err)
	}
	c.Credits = account.Balance
	return c, nil
}

// initialContextID picks the session's stored choice, then the user's default.
func (s *contextService) initialContextID(ctx context.Context, auth *domain.AuthContext) (string, error) {
	session, err := s.sessionStore.Get(ctx, auth.SessionID)
	if err == nil && session.ActiveContextID != "" {
		return session.ActiveContextID, nil
	}
	user, err := s.userStore.Get(ctx, auth.UserID)
	if err != nil {
		return "", err
	}
	return user.DefaultContextID, nil
}

func sortedMemberships(memberships []*domain.Membership) []*domain.Membership {
	sorted := lo.Filter(memberships, func(m *domain.Membership, _ int) bool {
		return m.Organization != nil
	})
	sortStableBy(sorted, func(m *domain.Membership) string { return m.Organization.Name })
	return sorted
}

func sortedGrants(grants []*domain.HelperGrant) []*domain.HelperGrant {
	sorted := append([]*domain.HelperGrant(nil), grants...)
	sortStableBy(sorted, func(g *domain.HelperGrant) string { return g.PrincipalName })
	return sorted
}

func sortStableBy[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}
