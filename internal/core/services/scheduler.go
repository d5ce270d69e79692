package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

const (
	defaultSchedulerPoll    = 30 * time.Second
	defaultSchedulerLockTTL = time.Minute
)

// Scheduler turns due ScheduledTasks into queue tasks. It runs inside the
// worker process. With several workers, the scheduler lock makes sure only
// one of them polls per cycle.
type Scheduler struct {
	store     driven.SchedulerStore
	taskQueue driven.TaskQueue
	lock      driven.DistributedLock
	logger    *slog.Logger

	interval     time.Duration
	lockTTL      time.Duration
	lockRequired bool

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// SchedulerConfig holds the scheduler dependencies.
// Lock may be nil for a single worker. When it is set and LockRequired is
// false, a failing lock backend does not stop scheduling.
type SchedulerConfig struct {
	Store        driven.SchedulerStore
	TaskQueue    driven.TaskQueue
	Lock         driven.DistributedLock
	Logger       *slog.Logger
	PollInterval time.Duration
	LockTTL      time.Duration
	LockRequired bool
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		store:        cfg.Store,
		taskQueue:    cfg.TaskQueue,
		lock:         cfg.Lock,
		logger:       cfg.Logger,
		interval:     cfg.PollInterval,
		lockTTL:      cfg.LockTTL,
		lockRequired: cfg.LockRequired,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.interval <= 0 {
		s.interval = defaultSchedulerPoll
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultSchedulerLockTTL
	}
	return s
}

// Start launches the poll loop. The first poll happens immediately.
// Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	s.logger.Info("scheduler starting", "poll_interval", s.interval)
	go s.run(ctx, s.stopCh, s.doneCh)
	return nil
}

// Stop ends the poll loop and waits for an in-flight poll to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running || s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh = nil
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkAndEnqueue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.checkAndEnqueue(ctx)
		}
	}
}

// checkAndEnqueue runs one poll.
func (s *Scheduler) checkAndEnqueue(ctx context.Context) {
	if s.lock != nil {
		release, ok := s.acquire(ctx)
		if !ok {
			return
		}
		defer release()
	}

	due, err := s.store.GetDueScheduledTasks(ctx)
	if err != nil {
		s.logger.Error("failed to load due schedules", "error", err)
		return
	}

	for _, scheduled := range due {
		if !scheduled.IsDue() {
			continue
		}
		s.enqueue(ctx, scheduled)
	}
}

// acquire takes the scheduler lock. ok is false when this cycle must be
// skipped; release is always safe to call when ok is true.
func (s *Scheduler) acquire(ctx context.Context) (release func(), ok bool) {
	noop := func() {}

	acquired, err := s.lock.TryLock(ctx, driven.SchedulerLockName, s.lockTTL)
	switch {
	case err != nil && s.lockRequired:
		s.logger.Warn("scheduler lock unavailable, skipping cycle", "error", err)
		return noop, false
	case err != nil:
		s.logger.Warn("scheduler lock unavailable, polling anyway", "error", err)
		return noop, true
	case !acquired:
		s.logger.Debug("scheduler lock held elsewhere, skipping cycle")
		return noop, false
	}

	return func() {
		if err := s.lock.Unlock(ctx, driven.SchedulerLockName); err != nil {
			s.logger.Warn("failed to release scheduler lock", "error", err)
		}
	}, true
}

func (s *Scheduler) enqueue(ctx context.Context, scheduled *domain.ScheduledTask) {
	task := domain.NewTask(scheduled.Type, "", nil)
	logger := s.logger.With("scheduled_id", scheduled.ID)

	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		logger.Error("failed to enqueue scheduled task", "error", err)
		_ = s.store.UpdateLastRun(ctx, scheduled.ID, err.Error())
		return
	}
	logger.Info("enqueued scheduled task", "task_id", task.ID, "task_type", task.Type)

	if err := s.store.UpdateLastRun(ctx, scheduled.ID, ""); err != nil {
		logger.Warn("failed to record scheduled run", "error", err)
	}
}

// EnsureDefaults stores the default schedules that are missing.
// Schedules already stored keep their interval and enabled flag.
func (s *Scheduler) EnsureDefaults(ctx context.Context) error {
	for _, scheduled := range domain.DefaultSchedulerConfig() {
		_, err := s.store.GetScheduledTask(ctx, scheduled.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := s.store.SaveScheduledTask(ctx, scheduled); err != nil {
			return err
		}
		s.logger.Info("registered default schedule", "scheduled_id", scheduled.ID, "interval", scheduled.Interval)
	}
	return nil
}
