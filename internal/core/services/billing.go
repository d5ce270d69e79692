package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure billingService implements BillingService
var _ driving.BillingService = (*billingService)(nil)

// maxPurchaseCredits caps a single purchase
const maxPurchaseCredits = 1_000_000

// billingService implements the BillingService interface
type billingService struct {
	accounts driven.AccountStore
	invoices driven.InvoiceStore
	contexts driving.ContextService
	logger   *slog.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(
	accounts driven.AccountStore,
	invoices driven.InvoiceStore,
	contexts driving.ContextService,
	logger *slog.Logger,
) driving.BillingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &billingService{
		accounts: accounts,
		invoices: invoices,
		contexts: contexts,
		logger:   logger.With("service", "billing"),
	}
}

// Pricing returns the current price list
func (s *billingService) Pricing() domain.Pricing {
	return domain.CurrentPricing()
}

// Purchase credits the context's account and records a paid invoice
func (s *billingService) Purchase(ctx context.Context, auth *domain.AuthContext, contextID string, req driving.PurchaseRequest) (*driving.PurchaseResult, error) {
	if req.Credits <= 0 || req.Credits > maxPurchaseCredits {
		return nil, fmt.Errorf("%w: credits must be between 1 and %d", domain.ErrInvalidInput, maxPurchaseCredits)
	}

	c, err := s.purchasable(ctx, auth, contextID)
	if err != nil {
		return nil, err
	}

	pricing := s.Pricing()
	if _, err := s.accounts.Credit(ctx, c.AccountID, req.Credits); err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ID:          generateID(),
		AccountID:   c.AccountID,
		Credits:     req.Credits,
		Amount:      pricing.Quote(req.Credits),
		Currency:    pricing.Currency,
		Status:      domain.InvoicePaid,
		PurchasedBy: auth.UserID,
		CreatedAt:   time.Now(),
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		s.logger.Error("failed to record invoice",
			"account_id", c.AccountID,
			"credits", req.Credits,
			"error", err,
		)
		return nil, err
	}

	updated, err := s.contexts.Resolve(ctx, auth, contextID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("credits purchased",
		"context_id", contextID,
		"account_id", c.AccountID,
		"credits", req.Credits,
		"amount", invoice.Amount.StringFixed(2),
	)
	return &driving.PurchaseResult{Invoice: invoice, Context: domain.BindContext(*updated)}, nil
}

// Invoices lists invoices of the context's account
func (s *billingService) Invoices(ctx context.Context, auth *domain.AuthContext, contextID string) ([]*domain.Invoice, error) {
	c, err := s.purchasable(ctx, auth, contextID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByAccount(ctx, c.AccountID)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []*domain.Invoice{}
	}
	return invoices, nil
}

// purchasable resolves a context the caller may buy credits for.
func (s *billingService) purchasable(ctx context.Context, auth *domain.AuthContext, contextID string) (*domain.Context, error) {
	c, err := s.contexts.Resolve(ctx, auth, contextID)
	if err != nil {
		return nil, err
	}
	if !c.CanPurchase() {
		return nil, domain.ErrForbidden
	}
	return c, nil
}
