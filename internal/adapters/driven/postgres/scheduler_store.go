package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

const scheduleColumns = `id, name, type, interval_ns, enabled, next_run, last_run, last_error`

// SchedulerStore keeps the maintenance schedules polled by the scheduler.
type SchedulerStore struct {
	db *DB
}

// NewSchedulerStore creates a new SchedulerStore
func NewSchedulerStore(db *DB) *SchedulerStore {
	return &SchedulerStore{db: db}
}

// GetScheduledTask returns one schedule, or domain.ErrNotFound
func (s *SchedulerStore) GetScheduledTask(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM scheduled_tasks WHERE id = $1`, id)
	schedule, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return schedule, err
}

// SaveScheduledTask upserts a schedule
func (s *SchedulerStore) SaveScheduledTask(ctx context.Context, schedule *domain.ScheduledTask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			interval_ns = EXCLUDED.interval_ns,
			enabled = EXCLUDED.enabled,
			next_run = EXCLUDED.next_run,
			last_run = EXCLUDED.last_run,
			last_error = EXCLUDED.last_error
	`,
		schedule.ID,
		schedule.Name,
		string(schedule.Type),
		schedule.Interval.Nanoseconds(),
		schedule.Enabled,
		schedule.NextRun,
		NullTime(schedule.LastRun),
		schedule.LastError,
	)
	return err
}

// GetDueScheduledTasks returns the enabled schedules whose next run has passed
func (s *SchedulerStore) GetDueScheduledTasks(ctx context.Context) ([]*domain.ScheduledTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+` FROM scheduled_tasks
		WHERE enabled AND next_run <= NOW()
		ORDER BY next_run
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []*domain.ScheduledTask
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, schedule)
	}
	return due, rows.Err()
}

// UpdateLastRun stamps a run and moves next_run one interval past it
func (s *SchedulerStore) UpdateLastRun(ctx context.Context, id string, lastError string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_tasks
		SET last_run = NOW(),
			next_run = NOW() + make_interval(secs => interval_ns / 1e9),
			last_error = $1
		WHERE id = $2
	`, lastError, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*domain.ScheduledTask, error) {
	var (
		schedule   domain.ScheduledTask
		intervalNs int64
		lastRun    sql.NullTime
	)
	err := row.Scan(
		&schedule.ID,
		&schedule.Name,
		&schedule.Type,
		&intervalNs,
		&schedule.Enabled,
		&schedule.NextRun,
		&lastRun,
		&schedule.LastError,
	)
	if err != nil {
		return nil, err
	}
	schedule.Interval = time.Duration(intervalNs)
	schedule.LastRun = TimePtr(lastRun)
	return &schedule, nil
}
