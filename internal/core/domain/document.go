package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// DocumentStatus is the processing state of a document
type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// IsTerminal reports whether no further transition can happen.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

// FilterAll matches any value in a DocumentFilter field
const FilterAll = "all"

// Document is a file submitted for processing, attributed to exactly one context.
type Document struct {
	ID           string         `json:"id"`
	FileName     string         `json:"file_name"`
	Status       DocumentStatus `json:"status"`
	UploadedDate time.Time      `json:"uploaded_date"`
	CreditsUsed  int64          `json:"credits_used"`

	// ContextID never changes after creation; ContextName is a snapshot
	// of the context label at upload time.
	ContextID   string `json:"context_id"`
	ContextName string `json:"context_name"`

	AccountID  string    `json:"account_id"`
	UploadedBy string    `json:"uploaded_by"`
	PageCount  int       `json:"page_count"`
	SizeBytes  int64     `json:"size_bytes"`
	StorageKey string    `json:"-"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MarkCompleted finishes processing and records the charge.
func (d *Document) MarkCompleted(pages int, credits int64) {
	d.Status = DocumentStatusCompleted
	d.PageCount = pages
	d.CreditsUsed = credits
	d.Error = ""
	d.UpdatedAt = time.Now()
}

// MarkFailed finishes processing without a charge.
func (d *Document) MarkFailed(reason string) {
	d.Status = DocumentStatusFailed
	d.CreditsUsed = 0
	d.Error = reason
	d.UpdatedAt = time.Now()
}

// DocumentFilter selects documents in the ledger.
// Empty fields and "all" match everything.
type DocumentFilter struct {
	Text      string `json:"text,omitempty"`
	Status    string `json:"status,omitempty"`
	ContextID string `json:"context_id,omitempty"`
}

// Matches reports whether a document satisfies every predicate of the filter.
func (f DocumentFilter) Matches(doc *Document) bool {
	if f.Text != "" && !strings.Contains(strings.ToLower(doc.FileName), strings.ToLower(f.Text)) {
		return false
	}
	if f.Status != "" && f.Status != FilterAll && string(doc.Status) != f.Status {
		return false
	}
	if f.ContextID != "" && f.ContextID != FilterAll && doc.ContextID != f.ContextID {
		return false
	}
	return true
}

// FilterDocuments returns the documents matching the filter in their original order.
func FilterDocuments(docs []*Document, filter DocumentFilter) []*Document {
	return lo.Filter(docs, func(doc *Document, _ int) bool {
		return filter.Matches(doc)
	})
}
