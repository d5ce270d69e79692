package driving

import (
	"context"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// PurchaseRequest buys credits for a context
type PurchaseRequest struct {
	Credits int64 `json:"credits"`
}

// PurchaseResult is the outcome of a purchase
type PurchaseResult struct {
	Invoice *domain.Invoice    `json:"invoice"`
	Context domain.ContextView `json:"context"`
}

// BillingService sells credits and reports balances
type BillingService interface {
	// Pricing returns the current price list
	Pricing() domain.Pricing

	// Purchase credits the context's account and records a paid invoice.
	// Helpers and organization members get domain.ErrForbidden.
	Purchase(ctx context.Context, auth *domain.AuthContext, contextID string, req PurchaseRequest) (*PurchaseResult, error)

	// Invoices lists invoices of the context's account, newest first
	Invoices(ctx context.Context, auth *domain.AuthContext, contextID string) ([]*domain.Invoice, error)
}
