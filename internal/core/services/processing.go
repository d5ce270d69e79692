package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure processingService implements ProcessingService
var _ driving.ProcessingService = (*processingService)(nil)

const (
	documentLockTTL    = 5 * time.Minute
	defaultMaxParallel = 4
)

// Failure reasons recorded on documents
const (
	reasonInvalidPDF          = "file is not a readable PDF"
	reasonInsufficientCredits = "insufficient credits"
	reasonPayloadMissing      = "uploaded payload is missing"
	reasonTimedOut            = "processing timed out"
)

// processingService stores uploaded payloads, records them in the ledger
// and charges credits once a worker has counted their pages.
type processingService struct {
	documents   driven.DocumentStore
	blobs       driven.BlobStore
	pages       driven.PageCounter
	accounts    driven.AccountStore
	taskQueue   driven.TaskQueue
	lock        driven.DistributedLock
	events      driven.EventPublisher
	contexts    AttributionSource
	logger      *slog.Logger
	maxParallel int
}

// AttributionSource lists the contexts a user can currently act as
type AttributionSource interface {
	AvailableFor(ctx context.Context, userID string) ([]domain.Context, error)
}

// ProcessingServiceConfig holds the dependencies of the processing service
type ProcessingServiceConfig struct {
	Documents   driven.DocumentStore
	Blobs       driven.BlobStore
	Pages       driven.PageCounter
	Accounts    driven.AccountStore
	TaskQueue   driven.TaskQueue
	Lock        driven.DistributedLock // Optional: serializes work on one document across workers
	Events      driven.EventPublisher  // Optional
	Contexts    AttributionSource      // Optional: rejects contexts the user can no longer act as
	Logger      *slog.Logger
	MaxParallel int // Concurrent blob writes per Submit (default: 4)
}

// NewProcessingService creates a new ProcessingService
func NewProcessingService(cfg ProcessingServiceConfig) driving.ProcessingService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	return &processingService{
		documents:   cfg.Documents,
		blobs:       cfg.Blobs,
		pages:       cfg.Pages,
		accounts:    cfg.Accounts,
		taskQueue:   cfg.TaskQueue,
		lock:        cfg.Lock,
		events:      cfg.Events,
		contexts:    cfg.Contexts,
		logger:      logger.With("service", "processing"),
		maxParallel: maxParallel,
	}
}

// Submit stores the payloads, records each as a processing document and
// queues it for a worker.
func (s *processingService) Submit(ctx context.Context, req driving.SubmitRequest) ([]driving.SubmitHandle, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: no files submitted", domain.ErrInvalidInput)
	}
	if err := req.Context.Validate(); err != nil {
		return nil, err
	}
	if req.Context.AccountID == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: attribution requires an account and a user", domain.ErrInvalidInput)
	}

	for _, f := range req.Files {
		if !mimetype.Detect(f.Data).Is(domain.MediaTypePDF) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotPDF, f.Name)
		}
	}
	if err := s.checkAttribution(ctx, req); err != nil {
		return nil, err
	}

	now := time.Now()
	docs := make([]*domain.Document, len(req.Files))
	for i, f := range req.Files {
		id := uuid.NewString()
		docs[i] = &domain.Document{
			ID:           id,
			FileName:     f.Name,
			Status:       domain.DocumentStatusProcessing,
			UploadedDate: now,
			ContextID:    req.Context.ID,
			ContextName:  req.Context.SnapshotName(),
			AccountID:    req.Context.AccountID,
			UploadedBy:   req.UserID,
			SizeBytes:    int64(len(f.Data)),
			StorageKey:   storageKey(req.Context.AccountID, id),
			UpdatedAt:    now,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i := range docs {
		doc, data := docs[i], req.Files[i].Data
		g.Go(func() error {
			if err := s.blobs.Put(gctx, doc.StorageKey, data, domain.MediaTypePDF); err != nil {
				return fmt.Errorf("store %s: %w", doc.FileName, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardBlobs(docs)
		return nil, err
	}

	if err := s.documents.SaveBatch(ctx, docs); err != nil {
		s.discardBlobs(docs)
		return nil, fmt.Errorf("save documents: %w", err)
	}

	tasks := make([]*domain.Task, len(docs))
	for i, doc := range docs {
		tasks[i] = domain.NewProcessDocumentTask(doc.AccountID, doc.ID)
	}
	if err := s.taskQueue.EnqueueBatch(ctx, tasks); err != nil {
		// Documents stay in processing; Reconcile fails them if nothing picks them up.
		s.logger.Error("failed to enqueue processing tasks", "documents", len(docs), "error", err)
	}

	handles := make([]driving.SubmitHandle, len(docs))
	for i, doc := range docs {
		handles[i] = driving.SubmitHandle{
			FileName:   doc.FileName,
			DocumentID: doc.ID,
			Status:     doc.Status,
		}
		s.publish(ctx, domain.EventUploadAccepted, doc)
	}

	s.logger.Info("documents submitted",
		"documents", len(docs),
		"context_id", req.Context.ID,
		"user_id", req.UserID,
	)
	return handles, nil
}

// Process counts the pages of a document and charges its account.
// Bad input and insufficient credits fail the document and return nil;
// any other error is returned so that the task is retried.
func (s *processingService) Process(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id required", domain.ErrInvalidInput)
	}

	if s.lock != nil {
		lockName := driven.DocumentLockName(documentID)
		locked, err := s.lock.TryLock(ctx, lockName, documentLockTTL)
		if err != nil {
			return fmt.Errorf("lock document: %w", err)
		}
		if !locked {
			return fmt.Errorf("document %s is being processed elsewhere", documentID)
		}
		defer func() {
			if err := s.lock.Unlock(ctx, lockName); err != nil {
				s.logger.Warn("failed to unlock document", "document_id", documentID, "error", err)
			}
		}()
	}

	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status.IsTerminal() {
		return nil
	}

	data, err := s.blobs.Get(ctx, doc.StorageKey)
	if errors.Is(err, domain.ErrNotFound) {
		return s.fail(ctx, doc, reasonPayloadMissing)
	}
	if err != nil {
		return fmt.Errorf("load payload: %w", err)
	}

	pages, err := s.pages.CountPages(ctx, data)
	if errors.Is(err, domain.ErrNotPDF) {
		return s.fail(ctx, doc, reasonInvalidPDF)
	}
	if err != nil {
		return fmt.Errorf("count pages: %w", err)
	}

	credits := domain.CreditsForPages(pages)
	if _, err := s.accounts.Debit(ctx, doc.AccountID, credits); err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			return s.fail(ctx, doc, reasonInsufficientCredits)
		}
		return fmt.Errorf("debit account: %w", err)
	}

	doc.MarkCompleted(pages, credits)
	if err := s.documents.Save(ctx, doc); err != nil {
		if _, refundErr := s.accounts.Credit(ctx, doc.AccountID, credits); refundErr != nil {
			s.logger.Error("failed to refund credits",
				"document_id", doc.ID,
				"account_id", doc.AccountID,
				"credits", credits,
				"error", refundErr,
			)
		}
		return fmt.Errorf("save document: %w", err)
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("failed to delete processed payload", "document_id", doc.ID, "error", err)
	}
	s.publish(ctx, domain.EventProcessingCompleted, doc)

	s.logger.Info("document processed",
		"document_id", doc.ID,
		"pages", pages,
		"credits", credits,
		"account_id", doc.AccountID,
	)
	return nil
}

// Reconcile fails documents that have been processing for longer than olderThan.
func (s *processingService) Reconcile(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.documents.ListStale(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, doc := range stale {
		if err := s.fail(ctx, doc, reasonTimedOut); err != nil {
			s.logger.Warn("failed to reconcile document", "document_id", doc.ID, "error", err)
			continue
		}
		failed++
	}

	if failed > 0 {
		s.logger.Info("reconciled stale documents", "failed", failed, "older_than", olderThan)
	}
	return failed, nil
}

// fail marks the document failed with no charge.
func (s *processingService) fail(ctx context.Context, doc *domain.Document, reason string) error {
	doc.MarkFailed(reason)
	if err := s.documents.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("failed to delete payload", "document_id", doc.ID, "error", err)
	}
	s.publish(ctx, domain.EventProcessingFailed, doc)

	s.logger.Info("document failed", "document_id", doc.ID, "reason", reason)
	return nil
}

func (s *processingService) publish(ctx context.Context, t domain.EventType, doc *domain.Document) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, domain.NewDocumentEvent(t, doc)); err != nil {
		s.logger.Warn("failed to publish event", "type", t, "document_id", doc.ID, "error", err)
	}
}

// checkAttribution rejects a context the user was removed from or whose
// grant was revoked after the upload was started.
func (s *processingService) checkAttribution(ctx context.Context, req driving.SubmitRequest) error {
	if s.contexts == nil {
		return nil
	}
	available, err := s.contexts.AvailableFor(ctx, req.UserID)
	if err != nil {
		return err
	}
	ok := lo.ContainsBy(available, func(c domain.Context) bool {
		return c.ID == req.Context.ID && c.AccountID == req.Context.AccountID
	})
	if !ok {
		return fmt.Errorf("%w: context %s is no longer available", domain.ErrForbidden, req.Context.ID)
	}
	return nil
}

func (s *processingService) discardBlobs(docs []*domain.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, doc := range docs {
		_ = s.blobs.Delete(ctx, doc.StorageKey)
	}
}

func storageKey(accountID, documentID string) string {
	return "documents/" + accountID + "/" + documentID + ".pdf"
}
