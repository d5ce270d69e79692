package domain

import "time"

// MediaTypePDF is the only media type admitted into an upload batch
const MediaTypePDF = "application/pdf"

// UploadStatus is the lifecycle state of one file in a batch
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusError     UploadStatus = "error"
)

// IsTerminal reports whether the file has finished, successfully or not.
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusError
}

// UploadSource says how candidates entered the batch
type UploadSource string

const (
	UploadSourceDrop   UploadSource = "drop"
	UploadSourcePicker UploadSource = "picker"
)

// UploadCandidate is a file offered to a batch
type UploadCandidate struct {
	Name      string
	MediaType string
	Data      []byte
}

// UploadFile is the client-visible state of one file in a batch
type UploadFile struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name"`
	MediaType  string       `json:"media_type"`
	Size       int64        `json:"size"`
	Progress   int          `json:"progress"`
	Status     UploadStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
	DocumentID string       `json:"document_id,omitempty"`
}

// RejectedFile reports a candidate that was not admitted
type RejectedFile struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Reason    string `json:"reason"`
}

// AddFilesResult summarises one AddFiles call
type AddFilesResult struct {
	Added    []UploadFile   `json:"added"`
	Rejected []RejectedFile `json:"rejected"`
}

// UploadBatchSnapshot is a point-in-time copy of a batch
type UploadBatchSnapshot struct {
	ID           string       `json:"id"`
	Files        []UploadFile `json:"files"`
	Started      bool         `json:"started"`
	CanStart     bool         `json:"can_start"`
	ContextID    string       `json:"context_id,omitempty"`
	ContextLabel string       `json:"context_label,omitempty"`
	UploadNotice string       `json:"upload_notice,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// UploadTiming controls the simulated progress schedule
type UploadTiming struct {
	// StaggerDelay is multiplied by the file's position before it starts
	StaggerDelay time.Duration
	// TickInterval is the time between progress steps
	TickInterval time.Duration
	// ProgressStep is added to progress on every tick
	ProgressStep int
}

// DefaultUploadTiming returns the dashboard's schedule: 500ms stagger,
// +10 every 200ms.
func DefaultUploadTiming() UploadTiming {
	return UploadTiming{
		StaggerDelay: 500 * time.Millisecond,
		TickInterval: 200 * time.Millisecond,
		ProgressStep: 10,
	}
}
