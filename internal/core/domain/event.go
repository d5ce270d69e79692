package domain

import "time"

// EventType names a document lifecycle event
type EventType string

const (
	EventUploadAccepted      EventType = "document.upload.accepted"
	EventProcessingCompleted EventType = "document.processing.completed"
	EventProcessingFailed    EventType = "document.processing.failed"
)

// Event is published whenever a document changes state
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	ContextID  string    `json:"context_id"`
	AccountID  string    `json:"account_id"`
	FileName   string    `json:"file_name"`
	Credits    int64     `json:"credits,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewDocumentEvent builds an event describing the document's current state.
func NewDocumentEvent(t EventType, doc *Document) *Event {
	return &Event{
		ID:         GenerateID(),
		Type:       t,
		DocumentID: doc.ID,
		ContextID:  doc.ContextID,
		AccountID:  doc.AccountID,
		FileName:   doc.FileName,
		Credits:    doc.CreditsUsed,
		Reason:     doc.Error,
		OccurredAt: time.Now(),
	}
}
