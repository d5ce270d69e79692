package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockAccountStore is an in-memory AccountStore for testing
type MockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.CreditAccount

	// DebitErr, when set, is returned by Debit instead of touching balances
	DebitErr error
}

// NewMockAccountStore creates a new MockAccountStore
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{
		accounts: make(map[string]*domain.CreditAccount),
	}
}

func (m *MockAccountStore) Create(ctx context.Context, account *domain.CreditAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return domain.ErrAlreadyExists
	}
	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *MockAccountStore) Get(ctx context.Context, id string) (*domain.CreditAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *MockAccountStore) Debit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DebitErr != nil {
		return nil, m.DebitErr
	}
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if account.Balance < amount {
		return nil, domain.ErrInsufficientCredits
	}
	account.Balance -= amount
	account.UpdatedAt = time.Now()
	copied := *account
	return &copied, nil
}

func (m *MockAccountStore) Credit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	account.Balance += amount
	account.UpdatedAt = time.Now()
	copied := *account
	return &copied, nil
}

// Balance returns the stored balance (for test assertions).
func (m *MockAccountStore) Balance(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		return account.Balance
	}
	return 0
}

// MockInvoiceStore is an in-memory InvoiceStore for testing
type MockInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice
}

// NewMockInvoiceStore creates a new MockInvoiceStore
func NewMockInvoiceStore() *MockInvoiceStore {
	return &MockInvoiceStore{
		invoices: make(map[string]*domain.Invoice),
	}
}

func (m *MockInvoiceStore) Save(ctx context.Context, invoice *domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *MockInvoiceStore) ListByAccount(ctx context.Context, accountID string) ([]*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.AccountID == accountID {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
