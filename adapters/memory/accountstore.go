// Package memory provides in-memory implementations of the storage ports,
// used in tests and for ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/agendahof/accessgate/ports"
)

// AccountStore is an in-memory implementation of ports.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]ports.Account
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]ports.Account)}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (ports.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return ports.Account{}, ports.ErrNotFound
	}
	return a, nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a ports.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = a
	return nil
}

// Update modifies an existing account.
func (s *AccountStore) Update(ctx context.Context, a ports.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return ports.ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
