package memory

import (
	"context"
	"sync"

	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/ports"
)

// ReceiptStore is an in-memory implementation of ports.ReceiptStore.
type ReceiptStore struct {
	mu       sync.RWMutex
	receipts map[string]entitlement.Receipt // by transaction ID
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{receipts: make(map[string]entitlement.Receipt)}
}

// ListByOwner returns all receipts for an owner.
func (s *ReceiptStore) ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entitlement.Receipt
	for _, r := range s.receipts {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Put stores or replaces a receipt by transaction ID.
func (s *ReceiptStore) Put(ctx context.Context, r entitlement.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts[r.TransactionID] = r
	return nil
}

// Ensure interface compliance.
var _ ports.ReceiptStore = (*ReceiptStore)(nil)
