package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// DB is the shared connection pool used by every store in this package.
type DB struct {
	*sql.DB
}

// Config tunes the pool. Zero values leave the database/sql defaults in place.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// ConnectAttempts is how many pings Connect tries before giving up.
	// Containers often start before the database accepts connections.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// Connect opens the pool and waits for the server to answer a ping.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	attempts := max(cfg.ConnectAttempts, 1)
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	for i := 1; ; i++ {
		err = sqlDB.PingContext(ctx)
		if err == nil {
			return &DB{DB: sqlDB}, nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			sqlDB.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	sqlDB.Close()
	return nil, fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}

// InitSchema applies schema.sql. Every statement in it is idempotent.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping satisfies the readiness check used by the HTTP server.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction runs fn inside a transaction, committing only when fn succeeds.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NullTime maps an optional timestamp onto a nullable column.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtr is the inverse of NullTime.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
