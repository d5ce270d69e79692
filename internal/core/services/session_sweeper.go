package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultUploadIdle    = 30 * time.Minute
)

// SessionSweeper drops in-memory state of sessions that ended without a
// logout, and closes upload batches nobody touched for a while.
type SessionSweeper struct {
	sessions  driven.SessionStore
	releasers []driving.SessionReleaser
	uploads   driving.UploadService
	clock     driven.Clock
	logger    *slog.Logger

	interval  time.Duration
	idleAfter time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// SessionSweeperConfig holds the sweeper dependencies.
// Uploads is optional; without it idle batches are left alone.
type SessionSweeperConfig struct {
	Sessions  driven.SessionStore
	Releasers []driving.SessionReleaser
	Uploads   driving.UploadService
	Clock     driven.Clock
	Logger    *slog.Logger
	Interval  time.Duration
	IdleAfter time.Duration
}

// SweepResult counts what one sweep released.
type SweepResult struct {
	Sessions int
	Batches  int
}

func NewSessionSweeper(cfg SessionSweeperConfig) *SessionSweeper {
	s := &SessionSweeper{
		sessions:  cfg.Sessions,
		releasers: cfg.Releasers,
		uploads:   cfg.Uploads,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
		idleAfter: cfg.IdleAfter,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("service", "session_sweeper")
	if s.interval <= 0 {
		s.interval = defaultSweepInterval
	}
	if s.idleAfter <= 0 {
		s.idleAfter = defaultUploadIdle
	}
	return s
}

// Start launches the sweep loop. Calling Start on a running sweeper does nothing.
func (s *SessionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	s.logger.Info("session sweeper starting", "interval", s.interval, "idle_after", s.idleAfter)
	go s.run(ctx, s.stopCh, s.doneCh)
}

// Stop ends the sweep loop and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
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
}

func (s *SessionSweeper) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Sessions whose lookup fails for any reason other than
// not being found are kept until the next pass.
func (s *SessionSweeper) Sweep(ctx context.Context) SweepResult {
	var result SweepResult

	held := lo.Uniq(lo.FlatMap(s.releasers, func(r driving.SessionReleaser, _ int) []string {
		return r.HeldSessions()
	}))
	for _, id := range held {
		ended, err := s.ended(ctx, id)
		if err != nil {
			s.logger.Warn("failed to look up session", "session_id", id, "error", err)
			continue
		}
		if !ended {
			continue
		}
		for _, r := range s.releasers {
			r.ReleaseSession(id)
		}
		result.Sessions++
	}

	if s.uploads != nil {
		result.Batches = s.uploads.ReleaseIdle(s.clock.Now().Add(-s.idleAfter))
	}

	if result.Sessions > 0 || result.Batches > 0 {
		s.logger.Info("swept session state", "sessions", result.Sessions, "batches", result.Batches)
	}
	return result
}

func (s *SessionSweeper) ended(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return session.IsExpired(), nil
}
