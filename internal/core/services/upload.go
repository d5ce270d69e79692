package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure uploadService implements UploadService
var _ driving.UploadService = (*uploadService)(nil)

// uploadService owns the upload batches of every session in this process.
type uploadService struct {
	contexts   driving.ContextService
	processing driving.ProcessingService
	clock      driven.Clock
	timing     domain.UploadTiming
	logger     *slog.Logger

	mu      sync.Mutex
	batches map[string]*uploadBatch
}

// UploadServiceConfig holds the dependencies of the upload service
type UploadServiceConfig struct {
	Contexts   driving.ContextService
	Processing driving.ProcessingService
	Clock      driven.Clock
	Timing     domain.UploadTiming
	Logger     *slog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(cfg UploadServiceConfig) driving.UploadService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timing := cfg.Timing
	if timing == (domain.UploadTiming{}) {
		timing = domain.DefaultUploadTiming()
	}
	return &uploadService{
		contexts:   cfg.Contexts,
		processing: cfg.Processing,
		clock:      cfg.Clock,
		timing:     timing,
		logger:     logger.With("service", "uploads"),
		batches:    make(map[string]*uploadBatch),
	}
}

// Create opens an empty batch whose attribution preview follows the session's active context.
func (s *uploadService) Create(ctx context.Context, auth *domain.AuthContext) (*domain.UploadBatchSnapshot, error) {
	reg, err := s.contexts.Registry(ctx, auth)
	if err != nil {
		return nil, err
	}

	userID := auth.UserID
	submit := func(ctx context.Context, attribution domain.Context, file domain.UploadFile, data []byte) (string, error) {
		handles, err := s.processing.Submit(ctx, driving.SubmitRequest{
			Context: attribution,
			UserID:  userID,
			Files:   []driving.SubmitFile{{Name: file.FileName, Data: data}},
		})
		if err != nil {
			return "", err
		}
		return handles[0].DocumentID, nil
	}

	b := newUploadBatch(auth.SessionID, s.clock, s.timing, submit, s.logger.With("session_id", auth.SessionID))
	b.onContextChanged(domain.BindContext(reg.Active()))
	b.unsubscribe = reg.Subscribe(b.onContextChanged)

	s.mu.Lock()
	s.batches[b.id] = b
	s.mu.Unlock()

	return b.Snapshot(), nil
}

// Get returns a snapshot of one of the session's batches.
func (s *uploadService) Get(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error) {
	b, err := s.batch(auth, batchID)
	if err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}

// AddFiles admits PDF candidates into the batch.
func (s *uploadService) AddFiles(ctx context.Context, auth *domain.AuthContext, batchID string, source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error) {
	b, err := s.batch(auth, batchID)
	if err != nil {
		return nil, err
	}
	return b.AddFiles(source, candidates)
}

// RemoveFile drops a pending file from the batch.
func (s *uploadService) RemoveFile(ctx context.Context, auth *domain.AuthContext, batchID, fileID string) (bool, error) {
	b, err := s.batch(auth, batchID)
	if err != nil {
		return false, err
	}
	return b.RemoveFile(fileID), nil
}

// Start uploads the batch as the session's active context.
func (s *uploadService) Start(ctx context.Context, auth *domain.AuthContext, batchID string) (*domain.UploadBatchSnapshot, error) {
	b, err := s.batch(auth, batchID)
	if err != nil {
		return nil, err
	}
	reg, err := s.contexts.Registry(ctx, auth)
	if err != nil {
		return nil, err
	}
	// Memberships and grants may have changed since the session loaded them
	attribution, err := s.contexts.Resolve(ctx, auth, reg.Active().ID)
	if err != nil {
		return nil, err
	}
	if err := b.Start(*attribution); err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}

// Discard closes the batch and forgets it.
func (s *uploadService) Discard(ctx context.Context, auth *domain.AuthContext, batchID string) error {
	b, err := s.batch(auth, batchID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.batches, batchID)
	s.mu.Unlock()

	b.Close()
	return nil
}

// ReleaseSession closes every batch of the session.
func (s *uploadService) ReleaseSession(sessionID string) {
	s.mu.Lock()
	var closing []*uploadBatch
	for id, b := range s.batches {
		if b.sessionID == sessionID {
			closing = append(closing, b)
			delete(s.batches, id)
		}
	}
	s.mu.Unlock()

	for _, b := range closing {
		b.Close()
	}
}

// HeldSessions returns the sessions that own at least one batch.
func (s *uploadService) HeldSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.batches))
	ids := make([]string, 0, len(s.batches))
	for _, b := range s.batches {
		if _, ok := seen[b.sessionID]; ok {
			continue
		}
		seen[b.sessionID] = struct{}{}
		ids = append(ids, b.sessionID)
	}
	return ids
}

// ReleaseIdle closes the batches with no upload under way that were last
// touched before the given time, and returns how many it closed.
func (s *uploadService) ReleaseIdle(before time.Time) int {
	s.mu.Lock()
	var closing []*uploadBatch
	for id, b := range s.batches {
		if b.idleSince(before) {
			closing = append(closing, b)
			delete(s.batches, id)
		}
	}
	s.mu.Unlock()

	for _, b := range closing {
		b.Close()
	}
	if len(closing) > 0 {
		s.logger.Info("closed idle upload batches", "count", len(closing))
	}
	return len(closing)
}

// Shutdown closes every batch.
func (s *uploadService) Shutdown() {
	s.mu.Lock()
	closing := make([]*uploadBatch, 0, len(s.batches))
	for id, b := range s.batches {
		closing = append(closing, b)
		delete(s.batches, id)
	}
	s.mu.Unlock()

	for _, b := range closing {
		b.Close()
	}
	if len(closing) > 0 {
		s.logger.Info("closed upload batches", "count", len(closing))
	}
}

// batch finds a batch owned by the caller's session.
func (s *uploadService) batch(auth *domain.AuthContext, batchID string) (*uploadBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok || b.sessionID != auth.SessionID {
		return nil, domain.ErrNotFound
	}
	return b, nil
}
