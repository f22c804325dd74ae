// Package entitlement provides entitlement value types and pure functions.
// An entitlement is a grant of access tied to a billed subscription record
// or a store purchase receipt. All functions here are deterministic over
// their inputs and a caller-supplied reference time; nothing reads the
// system clock.
package entitlement

import (
	"sort"
	"time"

	"github.com/agendahof/accessgate/domain/access"
	"github.com/agendahof/accessgate/domain/plan"
)

// Status is the billing state of a subscription record. It is written
// exclusively by the billing webhook pipeline; this package only reads it.
type Status string

const (
	StatusActive              Status = "active"
	StatusPendingCancellation Status = "pending_cancellation"
	StatusCancelled           Status = "cancelled"
	StatusPastDue             Status = "past_due"
	StatusExpired             Status = "expired"
)

// Record represents one backend-billed subscription row (immutable value
// type). Created and updated only by the external billing system; read-only
// here.
type Record struct {
	ID                 string
	OwnerID            string
	PlanID             *string
	Status             Status
	DiscountPercent    *int // 0-100; exactly 100 marks a courtesy grant
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	NextBillingAt      *time.Time
	CreatedAt          time.Time
}

// IsCourtesy reports whether the record is a fully comped grant.
// Discount of exactly 100 marks courtesy regardless of plan identifier.
func (r Record) IsCourtesy() bool {
	return r.DiscountPercent != nil && *r.DiscountPercent == 100
}

// Discount returns the discount percentage, treating absent as 0.
func (r Record) Discount() int {
	if r.DiscountPercent == nil {
		return 0
	}
	return *r.DiscountPercent
}

// Tier derives the effective plan tier of the record.
func (r Record) Tier() plan.Tier {
	if r.IsCourtesy() {
		return plan.TierCourtesy
	}
	if r.PlanID == nil {
		return plan.TierBasic
	}
	return plan.ResolveTier(*r.PlanID).Tier
}

// Policy names the grace behavior applied to active records.
// GraceDays past NextBillingAt are tolerated before a locally computed
// cutoff; zero days means the upstream status field is trusted as-is.
type Policy struct {
	GraceDays int
}

// GraceTrustUpstream is the production policy: an active record is valid
// unconditionally. The billing webhook pipeline is the sole writer of
// Status, so "active" already reflects payment state; no local grace
// arithmetic is layered on top.
var GraceTrustUpstream = Policy{GraceDays: 0}

// IsCurrentlyValid reports whether a record grants access at the reference
// time, under the production policy.
// This is a PURE function.
func IsCurrentlyValid(r Record, now time.Time) bool {
	return IsValidUnderPolicy(r, now, GraceTrustUpstream)
}

// IsValidUnderPolicy evaluates a record under an explicit grace policy.
// Rules, in order:
// 1. Courtesy grants are valid iff status is active; no grace applies.
// 2. Pending cancellation is valid through NextBillingAt (inclusive);
//    a missing next billing date means invalid.
// 3. Active records are valid unconditionally under zero grace days, or
//    through NextBillingAt + grace when a positive grace window is set.
// 4. Every other status is invalid.
// This is a PURE function.
func IsValidUnderPolicy(r Record, now time.Time, p Policy) bool {
	if r.IsCourtesy() {
		return r.Status == StatusActive
	}

	switch r.Status {
	case StatusPendingCancellation:
		if r.NextBillingAt == nil {
			return false
		}
		return !now.After(*r.NextBillingAt)

	case StatusActive:
		if p.GraceDays <= 0 {
			return true
		}
		if r.NextBillingAt == nil {
			return true
		}
		cutoff := r.NextBillingAt.AddDate(0, 0, p.GraceDays)
		return !now.After(cutoff)
	}

	return false
}

// ResolveBest picks the single best currently-valid record from a list.
// Records are ordered by discount ascending (absent as 0) so fully paid
// entitlements win over comped ones, then by creation time descending as a
// tie-break. The first record that validates is returned as an active
// backend state. The second return is false when nothing validates: callers
// must fall through to the receipt/trial/anti-abuse path before concluding
// no-access.
// This is a PURE function.
func ResolveBest(records []Record, now time.Time) (access.State, bool) {
	if len(records) == 0 {
		return access.State{}, false
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Discount() != sorted[j].Discount() {
			return sorted[i].Discount() < sorted[j].Discount()
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	for _, r := range sorted {
		if !IsCurrentlyValid(r, now) {
			continue
		}
		return access.Active(r.Tier(), r.NextBillingAt, r.IsCourtesy(), plan.SourceBackend), true
	}

	return access.State{}, false
}

// HasRevokedCourtesy reports whether any cancelled record was a courtesy
// grant. A principal whose full comp was revoked must not regain access
// through the trial path.
// This is a PURE function.
func HasRevokedCourtesy(cancelled []Record) bool {
	for _, r := range cancelled {
		if r.Status == StatusCancelled && r.IsCourtesy() {
			return true
		}
	}
	return false
}
