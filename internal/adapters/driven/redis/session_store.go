package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	// Key prefixes for Redis
	sessionPrefix        = "session:"
	sessionRefreshPrefix = "session:refresh:"
	sessionUserPrefix    = "session:user:"

	userSetTTL = 30 * 24 * time.Hour
)

// SessionStore implements driven.SessionStore using Redis.
// Sessions use Redis TTL for automatic expiration.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores a session with TTL based on ExpiresAt
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// Already expired, nothing to keep
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionPrefix+session.ID, data, ttl)
	if session.RefreshToken != "" {
		pipe.Set(ctx, sessionRefreshPrefix+session.RefreshToken, session.ID, ttl)
	}
	pipe.SAdd(ctx, sessionUserPrefix+session.UserID, session.ID)
	pipe.Expire(ctx, sessionUserPrefix+session.UserID, userSetTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// GetByRefreshToken retrieves a session by refresh token value
func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	sessionID, err := s.client.Get(ctx, sessionRefreshPrefix+refreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by refresh token: %w", err)
	}
	return s.Get(ctx, sessionID)
}

// setActiveScript rewrites the active context in place and keeps the remaining TTL.
var setActiveScript = redis.NewScript(`
	local raw = redis.call("get", KEYS[1])
	if not raw then
		return 0
	end
	local session = cjson.decode(raw)
	session["active_context_id"] = ARGV[1]
	redis.call("set", KEYS[1], cjson.encode(session), "KEEPTTL")
	return 1
`)

// SetActiveContext records the context the session acts as
func (s *SessionStore) SetActiveContext(ctx context.Context, id string, contextID string) error {
	updated, err := setActiveScript.Run(ctx, s.client, []string{sessionPrefix + id}, contextID).Int()
	if err != nil {
		return fmt.Errorf("failed to set active context: %w", err)
	}
	if updated == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.deleteSession(ctx, session)
}

// DeleteByUser deletes all sessions for a user (logout everywhere)
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	sessionIDs, err := s.client.SMembers(ctx, sessionUserPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}

	for _, sessionID := range sessionIDs {
		// Some sessions may have already expired
		_ = s.Delete(ctx, sessionID)
	}

	if err := s.client.Del(ctx, sessionUserPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// ListByUser lists all active sessions for a user
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessionIDs, err := s.client.SMembers(ctx, sessionUserPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user sessions: %w", err)
	}

	var sessions []*domain.Session
	var expiredIDs []interface{}

	for _, sessionID := range sessionIDs {
		session, err := s.Get(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			expiredIDs = append(expiredIDs, sessionID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if session.IsExpired() {
			expiredIDs = append(expiredIDs, sessionID)
			continue
		}
		sessions = append(sessions, session)
	}

	if len(expiredIDs) > 0 {
		s.client.SRem(ctx, sessionUserPrefix+userID, expiredIDs...)
	}
	return sessions, nil
}

// deleteSession removes a session and all its indexes
func (s *SessionStore) deleteSession(ctx context.Context, session *domain.Session) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionPrefix+session.ID)
	if session.RefreshToken != "" {
		pipe.Del(ctx, sessionRefreshPrefix+session.RefreshToken)
	}
	pipe.SRem(ctx, sessionUserPrefix+session.UserID, session.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
