package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*TableLock)(nil)

// TableLock implements driven.DistributedLock with rows in the locks table.
// It is the fallback when REDIS_URL is unset. A row past expires_at may be
// taken over by any instance.
type TableLock struct {
	db    *DB
	owner string
}

// NewTableLock creates a lock holder for this instance
func NewTableLock(db *DB) *TableLock {
	hostname, _ := os.Hostname()
	return &TableLock{
		db:    db,
		owner: fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString()[:8]),
	}
}

const tryLockQuery = `
	INSERT INTO locks (name, owner, expires_at)
	VALUES ($1, $2, NOW() + $3 * INTERVAL '1 millisecond')
	ON CONFLICT (name) DO UPDATE SET
		owner = EXCLUDED.owner,
		expires_at = EXCLUDED.expires_at
	WHERE locks.expires_at < NOW()
	RETURNING owner
`

// TryLock inserts the row, or takes over an expired one
func (l *TableLock) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	var owner string
	err := l.db.QueryRowContext(ctx, tryLockQuery, name, l.owner, ttl.Milliseconds()).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", name, err)
	}
	return true, nil
}

// Unlock deletes the row if this instance owns it
func (l *TableLock) Unlock(ctx context.Context, name string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM locks WHERE name = $1 AND owner = $2`, name, l.owner); err != nil {
		return fmt.Errorf("unlock %s: %w", name, err)
	}
	return nil
}

// Ping checks if PostgreSQL is reachable
func (l *TableLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
