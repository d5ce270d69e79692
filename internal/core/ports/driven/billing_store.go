package driven

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// AccountStore handles credit account persistence (PostgreSQL).
// Debit and Credit are atomic with respect to concurrent callers.
type AccountStore interface {
	// Create stores a new account
	Create(ctx context.Context, account *domain.CreditAccount) error

	// Get retrieves an account by ID
	Get(ctx context.Context, id string) (*domain.CreditAccount, error)

	// Debit subtracts amount from the balance.
	// Returns domain.ErrInsufficientCredits if the balance cannot cover it.
	Debit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error)

	// Credit adds amount to the balance
	Credit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error)
}

// InvoiceStore handles invoice persistence (PostgreSQL)
type InvoiceStore interface {
	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *domain.Invoice) error

	// ListByAccount lists invoices for an account, newest first
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error)
}
