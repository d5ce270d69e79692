package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing constants
var (
	// PricePerCredit is the list price of one credit in USD
	PricePerCredit = decimal.RequireFromString("0.15")
)

// CreditsPerPage is how many credits processing one page consumes
const CreditsPerPage = 1

// AccountKind says who owns a credit account
type AccountKind string

const (
	AccountKindUser         AccountKind = "user"
	AccountKindOrganization AccountKind = "organization"
)

// CreditAccount holds a credit balance
type CreditAccount struct {
	ID        string      `json:"id"`
	Kind      AccountKind `json:"kind"`
	OwnerID   string      `json:"owner_id"`
	Balance   int64       `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoicePending InvoiceStatus = "pending"
)

// Invoice records a credit purchase
type Invoice struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Credits     int64           `json:"credits"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      InvoiceStatus   `json:"status"`
	PurchasedBy string          `json:"purchased_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Pricing describes what credits cost
type Pricing struct {
	PricePerCredit decimal.Decimal `json:"price_per_credit"`
	Currency       string          `json:"currency"`
	CreditsPerPage int             `json:"credits_per_page"`
}

// CurrentPricing returns the active price list.
func CurrentPricing() Pricing {
	return Pricing{
		PricePerCredit: PricePerCredit,
		Currency:       "USD",
		CreditsPerPage: CreditsPerPage,
	}
}

// Quote returns the price of n credits.
func (p Pricing) Quote(n int64) decimal.Decimal {
	return p.PricePerCredit.Mul(decimal.NewFromInt(n)).Round(2)
}

// CreditsForPages returns the charge for processing a document.
func CreditsForPages(pages int) int64 {
	return int64(pages) * CreditsPerPage
}
