package memory

import (
	"context"
	"sync"

	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/ports"
)

// SubscriptionStore is an in-memory implementation of
// ports.SubscriptionStore.
type SubscriptionStore struct {
	mu      sync.RWMutex
	records map[string]entitlement.Record
}

// NewSubscriptionStore creates a new in-memory subscription store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{records: make(map[string]entitlement.Record)}
}

// Get retrieves a record by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (entitlement.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return entitlement.Record{}, ports.ErrNotFound
	}
	return r, nil
}

// ListByOwner returns all non-cancelled records for an owner.
func (s *SubscriptionStore) ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entitlement.Record
	for _, r := range s.records {
		if r.OwnerID == ownerID && r.Status != entitlement.StatusCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListCancelledByOwner returns cancelled records for an owner.
func (s *SubscriptionStore) ListCancelledByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entitlement.Record
	for _, r := range s.records {
		if r.OwnerID == ownerID && r.Status == entitlement.StatusCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

// Create stores a new record.
func (s *SubscriptionStore) Create(ctx context.Context, r entitlement.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[r.ID] = r
	return nil
}

// Update modifies an existing record.
func (s *SubscriptionStore) Update(ctx context.Context, r entitlement.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.ID]; !ok {
		return ports.ErrNotFound
	}
	s.records[r.ID] = r
	return nil
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
