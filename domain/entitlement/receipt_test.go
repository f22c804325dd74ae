package entitlement

import (
	"testing"
	"time"

	"github.com/agendahof/accessgate/domain/plan"
)

func TestReceiptIsCurrent(t *testing.T) {
	expiry := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	r := Receipt{ID: "rcpt-1", OwnerID: "owner-1", ProductID: "com.agendahof.premium", ExpiresAt: expiry}

	if !r.IsCurrent(expiry) {
		t.Error("expected receipt current exactly at expiry")
	}
	if r.IsCurrent(expiry.Add(time.Second)) {
		t.Error("expected receipt expired one second past expiry")
	}
}

func TestResolveBestReceipt(t *testing.T) {
	at := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("no receipts", func(t *testing.T) {
		if _, ok := ResolveBestReceipt(nil, at); ok {
			t.Error("expected no result for empty list")
		}
	})

	t.Run("all expired", func(t *testing.T) {
		receipts := []Receipt{
			{ID: "r1", ProductID: "com.agendahof.premium", ExpiresAt: at.AddDate(0, -1, 0)},
		}
		if _, ok := ResolveBestReceipt(receipts, at); ok {
			t.Error("expected no result when all receipts expired")
		}
	})

	t.Run("latest expiry wins", func(t *testing.T) {
		short := Receipt{ID: "r1", ProductID: "com.agendahof.pro", ExpiresAt: at.AddDate(0, 0, 3)}
		long := Receipt{ID: "r2", ProductID: "com.agendahof.premium", ExpiresAt: at.AddDate(0, 1, 0)}

		state, ok := ResolveBestReceipt([]Receipt{short, long}, at)
		if !ok {
			t.Fatal("expected a resolved state")
		}
		if state.Tier != plan.TierPremium {
			t.Errorf("tier = %q, want premium", state.Tier)
		}
		if state.Source != plan.SourceStore {
			t.Errorf("source = %q, want store", state.Source)
		}
		if state.ExpiresAt == nil || !state.ExpiresAt.Equal(long.ExpiresAt) {
			t.Errorf("ExpiresAt = %v, want %v", state.ExpiresAt, long.ExpiresAt)
		}
	})
}
