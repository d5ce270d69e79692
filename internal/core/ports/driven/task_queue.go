package driven

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// TaskQueue carries processing work from the API to the workers.
// Redis is used when configured, otherwise a Postgres table.
type TaskQueue interface {
	Enqueue(ctx context.Context, task *domain.Task) error

	// EnqueueBatch queues all tasks or none of them
	EnqueueBatch(ctx context.Context, tasks []*domain.Task) error

	// DequeueWithTimeout claims the next ready task, waiting up to timeout
	// seconds, and returns nil, nil when nothing became ready. A claimed task
	// is invisible to other workers until it is acked or nacked.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	Ack(ctx context.Context, taskID string) error

	// Nack releases a claimed task for another attempt, or marks it failed
	// once MaxAttempts is reached.
	Nack(ctx context.Context, taskID string, reason string) error

	Ping(ctx context.Context) error
	Close() error
}

// SchedulerStore keeps the recurring maintenance jobs.
type SchedulerStore interface {
	GetScheduledTask(ctx context.Context, id string) (*domain.ScheduledTask, error)
	SaveScheduledTask(ctx context.Context, task *domain.ScheduledTask) error

	// GetDueScheduledTasks returns enabled jobs whose NextRun has passed
	GetDueScheduledTasks(ctx context.Context) ([]*domain.ScheduledTask, error)

	// UpdateLastRun records a run and advances NextRun by the job interval
	UpdateLastRun(ctx context.Context, id string, lastError string) error
}
