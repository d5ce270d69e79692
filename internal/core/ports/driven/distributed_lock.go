package driven

import (
	"context"
	"time"
)

// SchedulerLockName is held for one poll of the scheduler.
const SchedulerLockName = "scheduler"

// DocumentLockName is held by the worker processing a document.
func DocumentLockName(documentID string) string {
	return "document:" + documentID
}

// DistributedLock serializes work across instances: one scheduler poll at a
// time and one worker per document. A lock expires after its TTL, so a
// crashed holder frees it without intervention.
type DistributedLock interface {
	// TryLock takes name for ttl. It returns false, nil when another holder
	// has it. Locks are not reentrant.
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Unlock frees name if this instance holds it and is a no-op otherwise.
	Unlock(ctx context.Context, name string) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
