package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.AccountStore = (*AccountStore)(nil)
	_ driven.InvoiceStore = (*InvoiceStore)(nil)
)

const accountColumns = `id, kind, owner_id, balance, created_at, updated_at`

// AccountStore implements driven.AccountStore using PostgreSQL.
// Balance changes are single conditional UPDATEs, so concurrent debits
// can never take a balance below zero.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new AccountStore
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create stores a new account
func (s *AccountStore) Create(ctx context.Context, account *domain.CreditAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, account.ID, account.Kind, account.OwnerID, account.Balance, account.CreatedAt, account.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Get retrieves an account by ID
func (s *AccountStore) Get(ctx context.Context, id string) (*domain.CreditAccount, error) {
	return scanAccount(s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM credit_accounts WHERE id = $1`, id))
}

// Debit subtracts amount when the balance covers it
func (s *AccountStore) Debit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, `
		UPDATE credit_accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING `+accountColumns, id, amount))
	if !errors.Is(err, domain.ErrNotFound) {
		return account, err
	}

	// No row updated: either the account is missing or the balance is short
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: debit %d from %s", domain.ErrInsufficientCredits, amount, id)
}

// Credit adds amount to the balance
func (s *AccountStore) Credit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error) {
	return scanAccount(s.db.QueryRowContext(ctx, `
		UPDATE credit_accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+accountColumns, id, amount))
}

func scanAccount(row *sql.Row) (*domain.CreditAccount, error) {
	var account domain.CreditAccount
	err := row.Scan(
		&account.ID,
		&account.Kind,
		&account.OwnerID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// InvoiceStore implements driven.InvoiceStore using PostgreSQL
type InvoiceStore struct {
	db *DB
}

// NewInvoiceStore creates a new InvoiceStore
func NewInvoiceStore(db *DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

// Save creates or updates an invoice
func (s *InvoiceStore) Save(ctx context.Context, invoice *domain.Invoice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, account_id, credits, amount, currency, status, purchased_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`,
		invoice.ID,
		invoice.AccountID,
		invoice.Credits,
		invoice.Amount.StringFixed(2),
		invoice.Currency,
		invoice.Status,
		invoice.PurchasedBy,
		invoice.CreatedAt,
	)
	return err
}

// ListByAccount lists invoices for an account, newest first
func (s *InvoiceStore) ListByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, credits, amount, currency, status, purchased_by, created_at
		FROM invoices
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []*domain.Invoice{}
	for rows.Next() {
		var invoice domain.Invoice
		var amount string
		if err := rows.Scan(
			&invoice.ID,
			&invoice.AccountID,
			&invoice.Credits,
			&amount,
			&invoice.Currency,
			&invoice.Status,
			&invoice.PurchasedBy,
			&invoice.CreatedAt,
		); err != nil {
			return nil, err
		}
		if invoice.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse invoice amount: %w", err)
		}
		invoices = append(invoices, &invoice)
	}
	return invoices, rows.Err()
}
