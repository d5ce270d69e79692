package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

const (
	// Stream names
	taskStream     = "docprocess:tasks"
	taskGroup      = "docprocess:workers"
	scheduledTasks = "docprocess:scheduled"

	// Key prefixes
	taskKeyPrefix = "docprocess:task:"
	msgKeySuffix  = ":msg"

	// Default consumer name prefix
	consumerPrefix = "worker-"

	// How long before a delivered task is considered abandoned
	claimTimeout = 5 * time.Minute

	// Task records outlive their stream entry for status lookups
	taskRecordTTL = 24 * time.Hour
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams.
// Delayed retries wait in a sorted set until they are due.
type Queue struct {
	client       *redis.Client
	consumerName string
	now          func() time.Time
}

// NewQueue creates a new Redis-backed task queue.
// The consumerName should be unique per worker instance (e.g., hostname + PID).
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = fmt.Sprintf("%s%d", consumerPrefix, time.Now().UnixNano())
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
		now:          time.Now,
	}

	err := q.client.XGroupCreateMkStream(context.Background(), taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return q, nil
}

// Enqueue adds a task to the queue for processing.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}
	return q.EnqueueBatch(ctx, []*domain.Task{task})
}

// EnqueueBatch adds multiple tasks in one MULTI/EXEC transaction.
func (q *Queue) EnqueueBatch(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	pipe := q.client.TxPipeline()
	now := q.now()

	for _, task := range tasks {
		if task == nil {
			continue
		}
		if err := q.stage(ctx, pipe, task, now); err != nil {
			return err
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue tasks: %w", err)
	}
	return nil
}

// stage queues the writes that make one task visible to workers.
func (q *Queue) stage(ctx context.Context, pipe redis.Pipeliner, task *domain.Task, now time.Time) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}
	pipe.Set(ctx, taskKeyPrefix+task.ID, data, taskRecordTTL)

	if task.ScheduledFor.After(now) {
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
		return nil
	}
	pipe.XAdd(ctx, streamEntry(task))
	return nil
}

func streamEntry(task *domain.Task) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: taskStream,
		Values: map[string]interface{}{
			"task_id":    task.ID,
			"type":       string(task.Type),
			"account_id": task.AccountID,
			"priority":   task.Priority,
		},
	}
}

// DequeueWithTimeout retrieves the next available task, waiting up to timeout seconds.
// A timeout of zero blocks until a task arrives or ctx ends.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	// Best effort; a failed promotion is retried on the next call
	_ = q.promoteScheduledTasks(ctx)

	if task, err := q.claimAbandonedTask(ctx); err == nil && task != nil {
		return task, nil
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    time.Duration(timeout) * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	return q.take(ctx, streams[0].Messages[0])
}

// take marks the task behind a stream message as processing.
// Messages without a task record are dropped.
func (q *Queue) take(ctx context.Context, msg redis.XMessage) (*domain.Task, error) {
	taskID, ok := msg.Values["task_id"].(string)
	if !ok {
		q.drop(ctx, msg.ID)
		return nil, nil
	}

	task, err := q.loadTask(ctx, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		q.drop(ctx, msg.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	task.MarkProcessing()
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, data, taskRecordTTL)
	pipe.Set(ctx, taskKeyPrefix+task.ID+msgKeySuffix, msg.ID, taskRecordTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to mark task processing: %w", err)
	}
	return task, nil
}

func (q *Queue) drop(ctx context.Context, msgID string) {
	q.client.XAck(ctx, taskStream, taskGroup, msgID)
	q.client.XDel(ctx, taskStream, msgID)
}

// Ack acknowledges successful completion of a task.
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	task, err := q.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	task.MarkCompleted()
	return q.finish(ctx, task, false)
}

// Nack returns the task for a delayed retry, or fails it once attempts run out.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	task, err := q.loadTask(ctx, taskID)
	if err != nil {
		return err
	}

	retry := task.CanRetry()
	if retry {
		task.Retry(reason)
	} else {
		task.MarkFailed(reason)
	}
	return q.finish(ctx, task, retry)
}

// finish acks the stream message and stores the task's new state.
func (q *Queue) finish(ctx context.Context, task *domain.Task, reschedule bool) error {
	msgKey := taskKeyPrefix + task.ID + msgKeySuffix
	msgID, err := q.client.Get(ctx, msgKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get message ID: %w", err)
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.TxPipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}
	pipe.Set(ctx, taskKeyPrefix+task.ID, data, taskRecordTTL)
	if reschedule {
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
	}
	pipe.Del(ctx, msgKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to finish task: %w", err)
	}
	return nil
}

// loadTask reads a task record by ID.
func (q *Queue) loadTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// Ping checks if the queue backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close is a no-op; the Redis client is shared.
func (q *Queue) Close() error {
	return nil
}

// promoteScheduledTasks moves due scheduled tasks to the main stream.
func (q *Queue) promoteScheduledTasks(ctx context.Context) error {
	due, err := q.client.ZRangeByScore(ctx, scheduledTasks, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(q.now().Unix(), 10),
	}).Result()
	if err != nil || len(due) == 0 {
		return err
	}

	pipe := q.client.TxPipeline()
	for _, taskID := range due {
		pipe.ZRem(ctx, scheduledTasks, taskID)

		task, err := q.loadTask(ctx, taskID)
		if err != nil {
			continue
		}
		pipe.XAdd(ctx, streamEntry(task))
	}

	_, err = pipe.Exec(ctx)
	return err
}

// claimAbandonedTask takes over a task another worker read but never finished.
func (q *Queue) claimAbandonedTask(ctx context.Context) (*domain.Task, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: taskStream,
		Group:  taskGroup,
		Start:  "-",
		End:    "+",
		Count:  10,
		Idle:   claimTimeout,
	}).Result()
	if err != nil {
		return nil, err
	}

	for _, p := range pending {
		claimed, err := q.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   taskStream,
			Group:    taskGroup,
			Consumer: q.consumerName,
			MinIdle:  claimTimeout,
			Messages: []string{p.ID},
		}).Result()
		if err != nil || len(claimed) == 0 {
			continue
		}

		task, err := q.take(ctx, claimed[0])
		if err != nil || task == nil {
			continue
		}
		return task, nil
	}

	return nil, nil
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
