// Package cache fronts slow stores with an in-process TTL cache.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AccountStore = (*AccountStore)(nil)

const (
	defaultExpiration = 30 * time.Second
	cleanupInterval   = 5 * time.Minute
)

// AccountStore caches balance reads. Writes always go to the backing store
// and refresh the cached entry with the returned account.
type AccountStore struct {
	next  driven.AccountStore
	items *gocache.Cache
}

// NewAccountStore wraps next; ttl <= 0 uses the default expiration
func NewAccountStore(next driven.AccountStore, ttl time.Duration) *AccountStore {
	if ttl <= 0 {
		ttl = defaultExpiration
	}
	return &AccountStore{
		next:  next,
		items: gocache.New(ttl, cleanupInterval),
	}
}

func (s *AccountStore) Create(ctx context.Context, account *domain.CreditAccount) error {
	if err := s.next.Create(ctx, account); err != nil {
		return err
	}
	s.store(account)
	return nil
}

func (s *AccountStore) Get(ctx context.Context, id string) (*domain.CreditAccount, error) {
	if cached, ok := s.items.Get(id); ok {
		copied := *cached.(*domain.CreditAccount)
		return &copied, nil
	}
	account, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(account)
	return account, nil
}

func (s *AccountStore) Debit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error) {
	account, err := s.next.Debit(ctx, id, amount)
	return s.refresh(id, account, err)
}

func (s *AccountStore) Credit(ctx context.Context, id string, amount int64) (*domain.CreditAccount, error) {
	account, err := s.next.Credit(ctx, id, amount)
	return s.refresh(id, account, err)
}

// refresh replaces the entry after a write; on failure the entry is dropped
// because the backing balance may have moved.
func (s *AccountStore) refresh(id string, account *domain.CreditAccount, err error) (*domain.CreditAccount, error) {
	if err != nil {
		s.items.Delete(id)
		return nil, err
	}
	s.store(account)
	return account, nil
}

func (s *AccountStore) store(account *domain.CreditAccount) {
	copied := *account
	s.items.SetDefault(account.ID, &copied)
}
