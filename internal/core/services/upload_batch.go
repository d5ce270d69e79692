package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// submitFunc hands a finished upload to processing and returns the document id.
type submitFunc func(ctx context.Context, attribution domain.Context, file domain.UploadFile, data []byte) (string, error)

// uploadEntry is one file of a batch together with its payload.
type uploadEntry struct {
	file        domain.UploadFile
	data        []byte
	attribution domain.Context
}

// uploadBatch drives the files of one batch through
// pending -> uploading -> completed|error on a simulated schedule.
// Every timer it starts is tracked and stopped by Close.
type uploadBatch struct {
	id        string
	sessionID string
	clock     driven.Clock
	timing    domain.UploadTiming
	submit    submitFunc
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	files       []*uploadEntry
	timers      map[string]driven.Timer
	view        domain.ContextView
	attributed  *domain.Context
	started     bool
	closed      bool
	createdAt   time.Time
	touchedAt   time.Time
	completedAt *time.Time
	unsubscribe func()
}

func newUploadBatch(sessionID string, clock driven.Clock, timing domain.UploadTiming, submit submitFunc, logger *slog.Logger) *uploadBatch {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &uploadBatch{
		id:        id,
		sessionID: sessionID,
		clock:     clock,
		timing:    timing,
		submit:    submit,
		logger:    logger.With("batch_id", id),
		ctx:       ctx,
		cancel:    cancel,
		timers:    make(map[string]driven.Timer),
		createdAt: clock.Now(),
		touchedAt: clock.Now(),
	}
}

// AddFiles admits PDF candidates, regardless of source, and reports the rest.
func (b *uploadBatch) AddFiles(source domain.UploadSource, candidates []domain.UploadCandidate) (*domain.AddFilesResult, error) {
	if source != domain.UploadSourceDrop && source != domain.UploadSourcePicker {
		return nil, fmt.Errorf("%w: unknown upload source %q", domain.ErrInvalidInput, source)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, domain.ErrBatchClosed
	}
	b.touchedAt = b.clock.Now()

	result := &domain.AddFilesResult{
		Added:    []domain.UploadFile{},
		Rejected: []domain.RejectedFile{},
	}
	for _, c := range candidates {
		mediaType, reason := admit(c)
		if reason != "" {
			result.Rejected = append(result.Rejected, domain.RejectedFile{
				Name:      c.Name,
				MediaType: mediaType,
				Reason:    reason,
			})
			continue
		}

		entry := &uploadEntry{
			file: domain.UploadFile{
				ID:        uuid.NewString(),
				FileName:  c.Name,
				MediaType: mediaType,
				Size:      int64(len(c.Data)),
				Status:    domain.UploadStatusPending,
			},
			data: c.Data,
		}
		b.files = append(b.files, entry)
		result.Added = append(result.Added, entry.file)
	}

	if len(result.Rejected) > 0 {
		b.logger.Info("rejected upload candidates",
			"source", source,
			"rejected", len(result.Rejected),
			"added", len(result.Added),
		)
	}
	return result, nil
}

// admit returns the effective media type and, when the candidate is not
// admitted, the reason. A missing or generic declared type is resolved by
// sniffing the payload.
func admit(c domain.UploadCandidate) (string, string) {
	declared := strings.ToLower(strings.TrimSpace(c.MediaType))
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		declared = parsed
	}
	if declared == "" || declared == "application/octet-stream" {
		declared = mimetype.Detect(c.Data).String()
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			declared = parsed
		}
	}

	switch {
	case declared != domain.MediaTypePDF:
		return declared, "only PDF files are accepted"
	case len(c.Data) == 0:
		return declared, "file is empty"
	}
	return declared, ""
}

// RemoveFile drops a pending file. Any other state, or an unknown id, is a no-op.
func (b *uploadBatch) RemoveFile(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.touchedAt = b.clock.Now()
	for i, e := range b.files {
		if e.file.ID != id {
			continue
		}
		if e.file.Status != domain.UploadStatusPending {
			return false
		}
		if t, ok := b.timers[id]; ok {
			t.Stop()
			delete(b.timers, id)
		}
		b.files = append(b.files[:i], b.files[i+1:]...)
		return true
	}
	return false
}

// Start schedules every pending file, attributed to the given context.
// The n-th pending file starts after n stagger delays.
func (b *uploadBatch) Start(attribution domain.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrBatchClosed
	}

	if len(b.timers) > 0 {
		return domain.ErrBatchInProgress
	}

	var pending []*uploadEntry
	for _, e := range b.files {
		switch e.file.Status {
		case domain.UploadStatusUploading:
			return domain.ErrBatchInProgress
		case domain.UploadStatusPending:
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return domain.ErrBatchEmpty
	}

	b.started = true
	b.attributed = &attribution
	b.completedAt = nil
	b.touchedAt = b.clock.Now()
	for i, e := range pending {
		e.attribution = attribution
		fileID := e.file.ID
		b.timers[fileID] = b.clock.AfterFunc(time.Duration(i)*b.timing.StaggerDelay, func() {
			b.begin(fileID)
		})
	}

	b.logger.Info("upload batch started",
		"files", len(pending),
		"context_id", attribution.ID,
	)
	return nil
}

// begin moves a file to uploading and schedules its first tick.
func (b *uploadBatch) begin(fileID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entry(fileID)
	if b.closed || e == nil || e.file.Status != domain.UploadStatusPending {
		return
	}
	e.file.Status = domain.UploadStatusUploading
	b.timers[fileID] = b.clock.AfterFunc(b.timing.TickInterval, func() {
		b.tick(fileID)
	})
}

// tick advances progress by one step and hands the file off once it reaches 100.
func (b *uploadBatch) tick(fileID string) {
	b.mu.Lock()
	e := b.entry(fileID)
	if b.closed || e == nil || e.file.Status != domain.UploadStatusUploading {
		b.mu.Unlock()
		return
	}

	e.file.Progress += b.timing.ProgressStep
	if e.file.Progress < 100 {
		b.timers[fileID] = b.clock.AfterFunc(b.timing.TickInterval, func() {
			b.tick(fileID)
		})
		b.mu.Unlock()
		return
	}

	e.file.Progress = 100
	delete(b.timers, fileID)
	file, data, attribution := e.file, e.data, e.attribution
	b.mu.Unlock()

	docID, err := b.submit(b.ctx, attribution, file, data)
	b.finish(fileID, docID, err)
}

// finish records the outcome of the hand-off to processing.
// A failed hand-off keeps the last progress.
func (b *uploadBatch) finish(fileID, docID string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entry(fileID)
	if b.closed || e == nil {
		return
	}

	if err != nil {
		e.file.Status = domain.UploadStatusError
		e.file.Error = err.Error()
		b.logger.Warn("upload hand-off failed", "file_id", fileID, "file_name", e.file.FileName, "error", err)
	} else {
		e.file.Status = domain.UploadStatusCompleted
		e.file.Progress = 100
		e.file.DocumentID = docID
		e.data = nil
	}

	b.touchedAt = b.clock.Now()
	if b.allTerminal() {
		now := b.touchedAt
		b.completedAt = &now
		b.logger.Info("upload batch finished", "files", len(b.files))
	}
}

// onContextChanged keeps the attribution preview current until the batch starts.
func (b *uploadBatch) onContextChanged(view domain.ContextView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = view
}

// Snapshot returns a copy of the batch state.
func (b *uploadBatch) Snapshot() *domain.UploadBatchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := &domain.UploadBatchSnapshot{
		ID:           b.id,
		Files:        make([]domain.UploadFile, 0, len(b.files)),
		Started:      b.started,
		ContextID:    b.view.ID,
		ContextLabel: b.view.Label,
		UploadNotice: b.view.UploadNotice,
		CreatedAt:    b.createdAt,
		CompletedAt:  b.completedAt,
	}
	if b.attributed != nil && b.inFlight() {
		label := b.attributed.Label()
		snap.ContextID = b.attributed.ID
		snap.ContextLabel = label
		snap.UploadNotice = domain.UploadNotice(label)
	}

	hasPending, uploading := false, false
	for _, e := range b.files {
		snap.Files = append(snap.Files, e.file)
		switch e.file.Status {
		case domain.UploadStatusPending:
			hasPending = true
		case domain.UploadStatusUploading:
			uploading = true
		}
	}
	snap.CanStart = !b.closed && hasPending && !uploading && len(b.timers) == 0
	return snap
}

// Close stops every pending timer and cancels in-flight hand-offs.
// It is safe to call more than once.
func (b *uploadBatch) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	stopped := 0
	for id, t := range b.timers {
		if t.Stop() {
			stopped++
		}
		delete(b.timers, id)
	}
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	b.cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
	b.logger.Debug("upload batch closed", "timers_stopped", stopped)
}

// idleSince reports whether the batch has no upload under way and was last
// touched before cutoff.
func (b *uploadBatch) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.inFlight() && b.touchedAt.Before(cutoff)
}

// pendingTimers returns the number of tracked timers.
func (b *uploadBatch) pendingTimers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timers)
}

func (b *uploadBatch) entry(fileID string) *uploadEntry {
	for _, e := range b.files {
		if e.file.ID == fileID {
			return e
		}
	}
	return nil
}

func (b *uploadBatch) allTerminal() bool {
	for _, e := range b.files {
		if !e.file.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// inFlight reports whether a start is still scheduling or uploading files.
func (b *uploadBatch) inFlight() bool {
	if len(b.timers) > 0 {
		return true
	}
	for _, e := range b.files {
		if e.file.Status == domain.UploadStatusUploading {
			return true
		}
	}
	return false
}
