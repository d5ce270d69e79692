package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

const lockPrefix = "docprocess:lock:"

// unlockScript deletes the key only while it still carries our owner id,
// so a holder whose TTL ran out cannot free a lock someone else took over.
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Lock implements driven.DistributedLock with SET NX PX keys.
type Lock struct {
	client *redis.Client
	owner  string
}

// NewLock creates a lock holder identified by host, pid and a random suffix.
func NewLock(client *redis.Client) *Lock {
	hostname, _ := os.Hostname()
	return &Lock{
		client: client,
		owner:  fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString()[:8]),
	}
}

// Owner identifies this holder in lock values.
func (l *Lock) Owner() string {
	return l.owner
}

// TryLock sets the key if it is absent
func (l *Lock) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockPrefix+name, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", name, err)
	}
	return ok, nil
}

// Unlock deletes the key if this holder owns it
func (l *Lock) Unlock(ctx context.Context, name string) error {
	err := unlockScript.Run(ctx, l.client, []string{lockPrefix + name}, l.owner).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("unlock %s: %w", name, err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
