package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/ports"
)

// SubscriptionStore implements ports.SubscriptionStore using SQLite.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore creates a new SQLite subscription store.
func NewSubscriptionStore(db *DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const recordColumns = `id, owner_id, plan_id, status, discount_percent,
       current_period_start, current_period_end, next_billing_at, created_at`

// Get retrieves a record by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (entitlement.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM subscription_records
		WHERE id = ?
	`, id)
	return scanRecord(row)
}

// ListByOwner returns all non-cancelled records for an owner.
func (s *SubscriptionStore) ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM subscription_records
		WHERE owner_id = ? AND status != 'cancelled'
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListCancelledByOwner returns cancelled records for an owner.
func (s *SubscriptionStore) ListCancelledByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM subscription_records
		WHERE owner_id = ? AND status = 'cancelled'
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Create stores a new record.
func (s *SubscriptionStore) Create(ctx context.Context, r entitlement.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscription_records (
			id, owner_id, plan_id, status, discount_percent,
			current_period_start, current_period_end, next_billing_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.OwnerID, nullString(r.PlanID), string(r.Status), nullInt(r.DiscountPercent),
		nullTime(r.CurrentPeriodStart), nullTime(r.CurrentPeriodEnd), nullTime(r.NextBillingAt),
		r.CreatedAt,
	)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies an existing record.
func (s *SubscriptionStore) Update(ctx context.Context, r entitlement.Record) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE subscription_records
		SET plan_id = ?, status = ?, discount_percent = ?,
		    current_period_start = ?, current_period_end = ?, next_billing_at = ?
		WHERE id = ?
	`,
		nullString(r.PlanID), string(r.Status), nullInt(r.DiscountPercent),
		nullTime(r.CurrentPeriodStart), nullTime(r.CurrentPeriodEnd), nullTime(r.NextBillingAt),
		r.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (entitlement.Record, error) {
	var r entitlement.Record
	var status string
	var planID sql.NullString
	var discount sql.NullInt64
	var periodStart, periodEnd, nextBilling sql.NullTime

	err := row.Scan(
		&r.ID, &r.OwnerID, &planID, &status, &discount,
		&periodStart, &periodEnd, &nextBilling, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entitlement.Record{}, ports.ErrNotFound
	}
	if err != nil {
		return entitlement.Record{}, err
	}

	r.Status = entitlement.Status(status)
	if planID.Valid {
		r.PlanID = &planID.String
	}
	if discount.Valid {
		d := int(discount.Int64)
		r.DiscountPercent = &d
	}
	if periodStart.Valid {
		r.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		r.CurrentPeriodEnd = &periodEnd.Time
	}
	if nextBilling.Valid {
		r.NextBillingAt = &nextBilling.Time
	}

	return r, nil
}

func scanRecords(rows *sql.Rows) ([]entitlement.Record, error) {
	var out []entitlement.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
