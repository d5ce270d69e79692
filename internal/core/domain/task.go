package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeProcessDocument counts pages and charges credits for one document
	TaskTypeProcessDocument TaskType = "process_document"
	// TaskTypeReconcileDocuments fails documents stuck in processing
	TaskTypeReconcileDocuments TaskType = "reconcile_documents"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is one unit of queued work. Payload keys depend on Type:
// process_document carries "document_id", reconcile_documents carries nothing.
type Task struct {
	ID        string            `json:"id"`
	Type      TaskType          `json:"type"`
	AccountID string            `json:"account_id,omitempty"`
	Payload   map[string]string `json:"payload"`
	Status    TaskStatus        `json:"status"`

	// Priority orders ready tasks, higher first
	Priority    int    `json:"priority"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"max_attempts"`
	Error       string `json:"error,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
}

const (
	defaultMaxAttempts = 3
	maxRetryBackoff    = 5 * time.Minute
)

// RetryBackoff is the delay before attempt n+1: 2^n seconds, capped at five minutes.
func RetryBackoff(attempts int) time.Duration {
	if attempts >= 9 {
		return maxRetryBackoff
	}
	return min(time.Duration(1<<attempts)*time.Second, maxRetryBackoff)
}

// NewTask builds a pending task that is ready immediately
func NewTask(taskType TaskType, accountID string, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		AccountID:    accountID,
		Payload:      payload,
		Status:       TaskStatusPending,
		MaxAttempts:  defaultMaxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewProcessDocumentTask creates a task to process an uploaded document
func NewProcessDocumentTask(accountID, documentID string) *Task {
	return NewTask(TaskTypeProcessDocument, accountID, map[string]string{
		"document_id": documentID,
	})
}

// NewReconcileDocumentsTask creates a housekeeping task for stuck documents
func NewReconcileDocumentsTask() *Task {
	return NewTask(TaskTypeReconcileDocuments, "", nil)
}

// DocumentID extracts the document_id from the payload (for process_document tasks)
func (t *Task) DocumentID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["document_id"]
}

func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady reports a pending task whose delay has elapsed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing claims the task and counts the attempt
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry puts the task back to pending and delays it by RetryBackoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err
	t.ScheduledFor = now.Add(RetryBackoff(t.Attempts))
}

// ScheduledTask is a recurring job the scheduler turns into a Task each
// time NextRun passes.
type ScheduledTask struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      TaskType      `json:"type"`
	Interval  time.Duration `json:"interval"`
	Enabled   bool          `json:"enabled"`
	LastRun   *time.Time    `json:"last_run,omitempty"`
	NextRun   time.Time     `json:"next_run"`
	LastError string        `json:"last_error,omitempty"`
}

// NewScheduledTask creates a new scheduled task
func NewScheduledTask(id, name string, taskType TaskType, interval time.Duration) *ScheduledTask {
	return &ScheduledTask{
		ID:       id,
		Name:     name,
		Type:     taskType,
		Interval: interval,
		Enabled:  true,
		NextRun:  time.Now().Add(interval),
	}
}

func (s *ScheduledTask) IsDue() bool {
	return s.Enabled && time.Now().After(s.NextRun)
}

// UpdateNextRun stamps LastRun and moves NextRun one interval ahead
func (s *ScheduledTask) UpdateNextRun() {
	now := time.Now()
	s.LastRun = &now
	s.NextRun = now.Add(s.Interval)
}

// DefaultSchedulerConfig lists the jobs seeded at startup
func DefaultSchedulerConfig() []*ScheduledTask {
	return []*ScheduledTask{
		NewScheduledTask(
			"document-reconcile",
			"Reconcile stuck documents",
			TaskTypeReconcileDocuments,
			15*time.Minute,
		),
	}
}
