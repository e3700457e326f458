package memory

import (
	"context"
	"sync"

	"github.com/code-payments/flipchat-iap-client/iap"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	purchases map[string]*iap.Purchase
}

func NewInMemory() iap.Store {
	return &InMemoryStore{
		purchases: map[string]*iap.Purchase{},
	}
}

func (s *InMemoryStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases = make(map[string]*iap.Purchase)
}

func (s *InMemoryStore) CreatePurchase(_ context.Context, purchase *iap.Purchase) error {
	if err := purchase.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.purchases[purchase.EntitlementKey]
	if ok {
		return iap.ErrExists
	}

	s.purchases[purchase.EntitlementKey] = purchase.Clone()

	return nil
}

func (s *InMemoryStore) GetPurchase(_ context.Context, entitlementKey string) (*iap.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, ok := s.purchases[entitlementKey]
	if !ok {
		return nil, iap.ErrNotFound
	}
	return purchase.Clone(), nil
}
