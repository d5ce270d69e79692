package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q, err := NewQueue(client, "worker-test")
	require.NoError(t, err)
	return q, mr
}

func TestNewQueue(t *testing.T) {
	_, err := NewQueue(nil, "")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	first, err := NewQueue(client, "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.consumerName)

	// The consumer group already exists the second time round
	_, err = NewQueue(client, "worker-2")
	assert.NoError(t, err)
}

func TestQueue_EnqueueDequeueAck(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewProcessDocumentTask("acct-corp", "doc-1")
	require.NoError(t, q.Enqueue(ctx, task))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "doc-1", got.DocumentID())
	assert.Equal(t, "acct-corp", got.AccountID)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, mr.Exists(taskKeyPrefix+task.ID+msgKeySuffix))

	require.NoError(t, q.Ack(ctx, task.ID))

	stored, err := q.loadTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
	assert.False(t, mr.Exists(taskKeyPrefix+task.ID+msgKeySuffix))

	// Nothing left to read
	none, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestQueue_EnqueueBatch(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	tasks := []*domain.Task{
		domain.NewProcessDocumentTask("acct-bob", "doc-1"),
		domain.NewProcessDocumentTask("acct-bob", "doc-2"),
		domain.NewReconcileDocumentsTask(),
	}
	require.NoError(t, q.EnqueueBatch(ctx, tasks))
	require.NoError(t, q.EnqueueBatch(ctx, nil))

	var seen []string
	for range tasks {
		got, err := q.DequeueWithTimeout(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		seen = append(seen, got.ID)
	}
	assert.Equal(t, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}, seen)
}

func TestQueue_NackSchedulesRetry(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()
	clock := time.Now()
	q.now = func() time.Time { return clock }

	task := domain.NewProcessDocumentTask("acct-bob", "doc-1")
	require.NoError(t, q.Enqueue(ctx, task))

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, q.Nack(ctx, task.ID, "lock busy"))

	stored, err := q.loadTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, stored.Status)
	assert.Equal(t, "lock busy", stored.Error)
	assert.True(t, stored.ScheduledFor.After(clock))

	members, err := mr.ZMembers(scheduledTasks)
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID}, members)

	// Not due yet
	none, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	// After the backoff the retry is promoted back onto the stream
	clock = clock.Add(time.Minute)
	retried, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, retried)
	assert.Equal(t, task.ID, retried.ID)
	assert.Equal(t, 2, retried.Attempts)
}

func TestQueue_NackExhausted(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewProcessDocumentTask("acct-bob", "doc-1")
	task.MaxAttempts = 1
	require.NoError(t, q.Enqueue(ctx, task))

	_, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, q.Nack(ctx, task.ID, "boom"))

	stored, err := q.loadTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)

	members, _ := mr.ZMembers(scheduledTasks)
	assert.Empty(t, members)
}

func TestQueue_DelayedTask(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewReconcileDocumentsTask()
	task.ScheduledFor = time.Now().Add(time.Hour)
	require.NoError(t, q.Enqueue(ctx, task))

	none, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestQueue_MissingTaskRecord(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewProcessDocumentTask("acct-bob", "doc-1")
	require.NoError(t, q.Enqueue(ctx, task))
	mr.Del(taskKeyPrefix + task.ID)

	got, err := q.DequeueWithTimeout(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got, "orphaned stream entries are dropped")

	_, err = q.loadTask(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, q.Ack(ctx, task.ID), domain.ErrNotFound)
	assert.ErrorIs(t, q.Nack(ctx, task.ID, "x"), domain.ErrNotFound)
}

func TestQueue_PingAndClose(t *testing.T) {
	q, mr := newTestQueue(t)
	assert.NoError(t, q.Ping(context.Background()))
	assert.NoError(t, q.Close())

	mr.Close()
	assert.Error(t, q.Ping(context.Background()))
}
