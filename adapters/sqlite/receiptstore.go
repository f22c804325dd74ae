package sqlite

import (
	"context"

	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/ports"
)

// ReceiptStore implements ports.ReceiptStore using SQLite.
type ReceiptStore struct {
	db *DB
}

// NewReceiptStore creates a new SQLite receipt store.
func NewReceiptStore(db *DB) *ReceiptStore {
	return &ReceiptStore{db: db}
}

// ListByOwner returns all receipts for an owner.
func (s *ReceiptStore) ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, product_id, transaction_id, expires_at, created_at
		FROM store_receipts
		WHERE owner_id = ?
		ORDER BY expires_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entitlement.Receipt
	for rows.Next() {
		var r entitlement.Receipt
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ProductID, &r.TransactionID, &r.ExpiresAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Put stores or replaces a receipt by transaction ID. Store renewals arrive
// with the same transaction lineage, so the latest expiry wins.
func (s *ReceiptStore) Put(ctx context.Context, r entitlement.Receipt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store_receipts (id, owner_id, product_id, transaction_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			product_id = excluded.product_id,
			expires_at = excluded.expires_at
	`, r.ID, r.OwnerID, r.ProductID, r.TransactionID, r.ExpiresAt, r.CreatedAt)
	return err
}

// Ensure interface compliance.
var _ ports.ReceiptStore = (*ReceiptStore)(nil)
