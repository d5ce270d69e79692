package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// scheduleRow fills Scan destinations the way the driver would for one
// scheduled_tasks row.
type scheduleRow struct {
	intervalNs int64
	nextRun    time.Time
	lastRun    sql.NullTime
	err        error
}

func (r scheduleRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = "reconcile-documents"
	*dest[1].(*string) = "Reconcile documents"
	*dest[2].(*domain.TaskType) = domain.TaskTypeReconcileDocuments
	*dest[3].(*int64) = r.intervalNs
	*dest[4].(*bool) = true
	*dest[5].(*time.Time) = r.nextRun
	*dest[6].(*sql.NullTime) = r.lastRun
	*dest[7].(*string) = ""
	return nil
}

func TestScanSchedule(t *testing.T) {
	next := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	last := next.Add(-5 * time.Minute)

	t.Run("never run", func(t *testing.T) {
		schedule, err := scanSchedule(scheduleRow{intervalNs: int64(5 * time.Minute), nextRun: next})
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, schedule.Interval)
		assert.Equal(t, domain.TaskTypeReconcileDocuments, schedule.Type)
		assert.Nil(t, schedule.LastRun)
		assert.Equal(t, next, schedule.NextRun)
	})

	t.Run("previous run", func(t *testing.T) {
		schedule, err := scanSchedule(scheduleRow{
			intervalNs: int64(time.Hour),
			nextRun:    next,
			lastRun:    sql.NullTime{Time: last, Valid: true},
		})
		require.NoError(t, err)
		require.NotNil(t, schedule.LastRun)
		assert.Equal(t, last, *schedule.LastRun)
	})

	t.Run("no row", func(t *testing.T) {
		_, err := scanSchedule(scheduleRow{err: sql.ErrNoRows})
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})
}
