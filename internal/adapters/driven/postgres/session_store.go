package postgres

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const sessionColumns = `id, user_id, token, refresh_token, active_context_id, expires_at, created_at, user_agent, ip_address`

// SessionStore implements driven.SessionStore using PostgreSQL.
// Used when Redis is not configured; expired rows are filtered on read.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save stores a session
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			refresh_token = EXCLUDED.refresh_token,
			active_context_id = EXCLUDED.active_context_id,
			expires_at = EXCLUDED.expires_at,
			user_agent = EXCLUDED.user_agent,
			ip_address = EXCLUDED.ip_address
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.ActiveContextID,
		session.ExpiresAt,
		session.CreatedAt,
		session.UserAgent,
		session.IPAddress,
	)
	return err
}

// Get retrieves a live session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.one(ctx, `WHERE id = $1 AND expires_at > NOW()`, id)
}

// GetByRefreshToken retrieves a live session by refresh token value
func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return s.one(ctx, `WHERE refresh_token = $1 AND refresh_token <> '' AND expires_at > NOW()`, refreshToken)
}

// SetActiveContext records the context the session acts as
func (s *SessionStore) SetActiveContext(ctx context.Context, id string, contextID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET active_context_id = $1 WHERE id = $2 AND expires_at > NOW()`, contextID, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session; missing sessions are not an error
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteByUser deletes all sessions for a user (logout everywhere)
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// ListByUser lists all active sessions for a user
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	return s.query(ctx, `WHERE user_id = $1 AND expires_at > NOW() ORDER BY created_at DESC`, userID)
}

func (s *SessionStore) one(ctx context.Context, where string, arg string) (*domain.Session, error) {
	sessions, err := s.query(ctx, where, arg)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return sessions[0], nil
}

func (s *SessionStore) query(ctx context.Context, where string, args ...interface{}) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var session domain.Session
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Token,
			&session.RefreshToken,
			&session.ActiveContextID,
			&session.ExpiresAt,
			&session.CreatedAt,
			&session.UserAgent,
			&session.IPAddress,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}
