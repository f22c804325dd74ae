package entitlement

import (
	"time"

	"github.com/agendahof/accessgate/domain/access"
	"github.com/agendahof/accessgate/domain/plan"
)

// Receipt represents one validated store purchase (immutable value type).
// Receipts are a second source of truth, written by the store receipt
// validation pipeline; they never carry discounts or billing status.
type Receipt struct {
	ID            string
	OwnerID       string
	ProductID     string
	TransactionID string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// IsCurrent reports whether the receipt grants access at the reference time.
// The expiry boundary is inclusive, matching the record validator.
func (r Receipt) IsCurrent(now time.Time) bool {
	return !now.After(r.ExpiresAt)
}

// ResolveBestReceipt picks the current receipt with the latest expiry.
// Backend records take precedence over receipts; callers consult this only
// after ResolveBest returns nothing (the BackendOverStore policy).
// This is a PURE function.
func ResolveBestReceipt(receipts []Receipt, now time.Time) (access.State, bool) {
	var best *Receipt
	for i := range receipts {
		r := receipts[i]
		if !r.IsCurrent(now) {
			continue
		}
		if best == nil || r.ExpiresAt.After(best.ExpiresAt) {
			best = &receipts[i]
		}
	}
	if best == nil {
		return access.State{}, false
	}

	expires := best.ExpiresAt
	tier := plan.ResolveTier(best.ProductID).Tier
	return access.Active(tier, &expires, false, plan.SourceStore), true
}
