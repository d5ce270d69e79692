package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

const documentColumns = `id, file_name, status, uploaded_date, credits_used, context_id, context_name,
	account_id, uploaded_by, page_count, size_bytes, storage_key, error, updated_at`

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// upsertDocument never rewrites attribution columns; a document keeps the
// context it was uploaded under for its whole life.
const upsertDocument = `
	INSERT INTO documents (` + documentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		credits_used = EXCLUDED.credits_used,
		page_count = EXCLUDED.page_count,
		error = EXCLUDED.error,
		updated_at = EXCLUDED.updated_at
`

func documentArgs(doc *domain.Document) []interface{} {
	return []interface{}{
		doc.ID,
		doc.FileName,
		doc.Status,
		doc.UploadedDate,
		doc.CreditsUsed,
		doc.ContextID,
		doc.ContextName,
		doc.AccountID,
		doc.UploadedBy,
		doc.PageCount,
		doc.SizeBytes,
		doc.StorageKey,
		doc.Error,
		doc.UpdatedAt,
	}
}

// Save creates or updates a document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, upsertDocument, documentArgs(doc)...)
	return err
}

// SaveBatch saves multiple documents in a transaction
func (s *DocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertDocument)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, doc := range docs {
			if _, err := stmt.ExecContext(ctx, documentArgs(doc)...); err != nil {
				return fmt.Errorf("save document %s: %w", doc.ID, err)
			}
		}
		return nil
	})
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	docs, err := s.query(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return docs[0], nil
}

// ListByContexts lists documents attributed to any of the contexts, newest first
func (s *DocumentStore) ListByContexts(ctx context.Context, contextIDs []string) ([]*domain.Document, error) {
	if len(contextIDs) == 0 {
		return []*domain.Document{}, nil
	}
	return s.query(ctx, `WHERE context_id = ANY($1) ORDER BY uploaded_date DESC, id DESC`, pq.Array(contextIDs))
}

// ListStale lists documents still processing that were uploaded before the cutoff
func (s *DocumentStore) ListStale(ctx context.Context, before time.Time) ([]*domain.Document, error) {
	return s.query(ctx, `WHERE status = $1 AND uploaded_date < $2 ORDER BY uploaded_date ASC`,
		domain.DocumentStatusProcessing, before)
}

func (s *DocumentStore) query(ctx context.Context, where string, args ...interface{}) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.FileName,
			&doc.Status,
			&doc.UploadedDate,
			&doc.CreditsUsed,
			&doc.ContextID,
			&doc.ContextName,
			&doc.AccountID,
			&doc.UploadedBy,
			&doc.PageCount,
			&doc.SizeBytes,
			&doc.StorageKey,
			&doc.Error,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}
