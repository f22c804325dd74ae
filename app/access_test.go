package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agendahof/accessgate/adapters/clock"
	"github.com/agendahof/accessgate/adapters/memory"
	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/domain/plan"
	"github.com/agendahof/accessgate/ports"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

// countingSubscriptionStore counts fetches so tests can assert the
// short-circuit paths never hit the store.
type countingSubscriptionStore struct {
	ports.SubscriptionStore
	listCalls int
}

func (c *countingSubscriptionStore) ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	c.listCalls++
	return c.SubscriptionStore.ListByOwner(ctx, ownerID)
}

func (c *countingSubscriptionStore) ListCancelledByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	c.listCalls++
	return c.SubscriptionStore.ListCancelledByOwner(ctx, ownerID)
}

// failingSubscriptionStore simulates a backend outage.
type failingSubscriptionStore struct {
	ports.SubscriptionStore
	err error
}

func (f *failingSubscriptionStore) ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error) {
	return nil, f.err
}

type fixture struct {
	accounts      *memory.AccountStore
	subscriptions *countingSubscriptionStore
	receipts      *memory.ReceiptStore
	clock         *clock.Fake
	service       *AccessService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	accounts := memory.NewAccountStore()
	subs := &countingSubscriptionStore{SubscriptionStore: memory.NewSubscriptionStore()}
	receipts := memory.NewReceiptStore()
	fake := clock.NewFake(testNow)

	return &fixture{
		accounts:      accounts,
		subscriptions: subs,
		receipts:      receipts,
		clock:         fake,
		service:       NewAccessService(accounts, subs, receipts, fake, nil, zerolog.Nop()),
	}
}

func (f *fixture) addOwner(t *testing.T, id string, createdAt time.Time, trialMeta string) {
	t.Helper()
	err := f.accounts.Create(context.Background(), ports.Account{
		ID: id, Email: id + "@clinic.test", Role: ports.RoleOwner, Active: true,
		TrialEndsAt: trialMeta, CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
}

func TestEvaluate_InactiveStaffShortCircuits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.accounts.Create(ctx, ports.Account{
		ID: "staff-1", Role: ports.RoleStaff, Active: false, OwnerID: "owner-1",
	}); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	state, err := f.service.Evaluate(ctx, "staff-1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if state.HasAccess() {
		t.Error("expected no access for inactive staff")
	}
	if f.subscriptions.listCalls != 0 {
		t.Errorf("subscription store hit %d times, want 0 (short-circuit)", f.subscriptions.listCalls)
	}
}

func TestEvaluate_UnlinkedStaffShortCircuits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.accounts.Create(ctx, ports.Account{
		ID: "staff-1", Role: ports.RoleStaff, Active: true, OwnerID: "",
	}); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	state, err := f.service.Evaluate(ctx, "staff-1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if state.HasAccess() {
		t.Error("expected no access for staff without linked owner")
	}
	if f.subscriptions.listCalls != 0 {
		t.Errorf("subscription store hit %d times, want 0", f.subscriptions.listCalls)
	}
}

func TestEvaluate_StaffInheritsOwnerEntitlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addOwner(t, "owner-1", testNow.AddDate(-1, 0, 0), "")
	if err := f.accounts.Create(ctx, ports.Account{
		ID: "staff-1", Role: ports.RoleStaff, Active: true, OwnerID: "owner-1",
		CreatedAt: testNow.AddDate(0, -1, 0),
	}); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	next := testNow.AddDate(0, 1, 0)
	if err := f.subscriptions.Create(ctx, entitlement.Record{
		ID: "rec-1", OwnerID: "owner-1", PlanID: strPtr("clinic.pro.monthly"),
		Status: entitlement.StatusActive, NextBillingAt: &next,
		CreatedAt: testNow.AddDate(0, -6, 0),
	}); err != nil {
		t.Fatalf("create record: %v", err)
	}

	state, err := f.service.Evaluate(ctx, "staff-1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !state.HasAccess() || state.Tier != plan.TierPro {
		t.Errorf("state = %+v, want pro access inherited from owner", state)
	}
}

func TestEvaluate_OwnerWithActivePremium(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addOwner(t, "owner-1", testNow.AddDate(-1, 0, 0), "")

	next := testNow.AddDate(0, 1, 0)
	if err := f.subscriptions.Create(ctx, entitlement.Record{
		ID: "rec-1", OwnerID: "owner-1", PlanID: strPtr("com.agendahof.premium"),
		Status: entitlement.StatusActive, NextBillingAt: &next,
		CreatedAt: testNow.AddDate(0, -3, 0),
	}); err != nil {
		t.Fatalf("create record: %v", err)
	}

	state, err := f.service.Evaluate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !state.HasAccess() {
		t.Fatal("expected access")
	}
	if state.Tier != plan.TierPremium || state.Source != plan.SourceBackend {
		t.Errorf("tier/source = %q/%q, want premium/backend", state.Tier, state.Source)
	}
	if state.IsInTrial || state.IsCourtesy {
		t.Error("expected a plain paid subscription state")
	}
}

func TestEvaluate_ValidEntitlementShortCircuitsAntiAbuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addOwner(t, "owner-1", testNow.AddDate(0, 0, -10), "")

	// A revoked courtesy exists, but a live paid record wins first.
	if err := f.subscriptions.Create(ctx, entitlement.Record{
		ID: "rec-comp", OwnerID: "owner-1", Status: entitlement.StatusCancelled,
		DiscountPercent: intPtr(100), CreatedAt: testNow.AddDate(0, -6, 0),
	}); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := f.subscriptions.Create(ctx, entitlement.Record{
		ID: "rec-paid", OwnerID: "owner-1", PlanID: strPtr("clinic.basic.monthly"),
		Status: entitlement.StatusActive, CreatedAt: testNow.AddDate(0, -1, 0),
	}); err != nil {
		t.Fatalf("create record: %v", err)
	}

	state, err := f.service.Evaluate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !state.HasActiveSubscription {
		t.Error("expected the live paid record to grant access despite revoked courtesy history")
	}
}

func TestEvaluate_RevokedCourtesyForfeitsTrial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Account created 10 days ago, so the 7-day trial window alone would
	// already have lapsed; use 3 days to prove forfeiture, not expiry.
	f.addOwner(t, "owner-1", testNow.AddDate(0, 0, -3), "")

	if err := f.subscriptions.Create(ctx, entitlement.Record{
		ID: "rec-comp", OwnerID: "owner-1", Status: entitlement.StatusCancelled,
		DiscountPercent: intPtr(100), CreatedAt: testNow.AddDate(0, -2, 0),
	}); err != nil {
		t.Fatalf("create record: %v", err)
	}

	state, err := f.service.Evaluate(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if state.HasAccess() {
		t.Error("expected revoked courtesy to suppress the trial fallback")
	}
}

func TestEvaluate_TrialFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addOwner(t, "owner-new", testNow.AddDate(0, 0, -2), "")

	state, err := f.service.Evaluate(ctx, "owner-new")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !state.IsInTrial {
		t.Fatal("expected trial access for a 2-day-old account")
	}
	if state.Tier != plan.TierTrial {
		t.Errorf("tier = %q, want trial", state.Tier)
	}

	// Five days later the default window has lapsed.
	f.clock.Advance(5*24*time.Hour + time.Second)
	state, err = f.service.Evaluate(ctx, "owner-new")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if state.HasAccess() {
		t.Error("expected no access after the trial window")
	}
}

func TestEvaluate_StoreReceiptPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("receipt grants access when no backend record validates", func(t *testing.T) {
		f.addOwner(t, "owner-iap", testNow.AddDate(0, -2, 0), "")

		if err := f.receipts.Put(ctx, entitlement.Receipt{
			ID: "rcpt-1", OwnerID: "owner-iap", ProductID: "com.agendahof.premium",
			TransactionID: "txn-1", ExpiresAt: testNow.AddDate(0, 1, 0),
		}); err != nil {
			t.Fatalf("put receipt: %v", err)
		}

		state, err := f.service.Evaluate(ctx, "owner-iap")
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if !state.HasActiveSubscription || state.Source != plan.SourceStore {
			t.Errorf("state = %+v, want store-sourced access", state)
		}
		if state.Tier != plan.TierPremium {
			t.Errorf("tier = %q, want premium", state.Tier)
		}
	})

	t.Run("backend record wins over receipt", func(t *testing.T) {
		f.addOwner(t, "owner-both", testNow.AddDate(0, -2, 0), "")

		if err := f.receipts.Put(ctx, entitlement.Receipt{
			ID: "rcpt-2", OwnerID: "owner-both", ProductID: "com.agendahof.premium",
			TransactionID: "txn-2", ExpiresAt: testNow.AddDate(0, 1, 0),
		}); err != nil {
			t.Fatalf("put receipt: %v", err)
		}
		if err := f.subscriptions.Create(ctx, entitlement.Record{
			ID: "rec-backend", OwnerID: "owner-both", PlanID: strPtr("clinic.basic.monthly"),
			Status: entitlement.StatusActive, CreatedAt: testNow.AddDate(0, -1, 0),
		}); err != nil {
			t.Fatalf("create record: %v", err)
		}

		state, err := f.service.Evaluate(ctx, "owner-both")
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if state.Source != plan.SourceBackend {
			t.Errorf("source = %q, want backend (BackendOverStore policy)", state.Source)
		}
	})

	t.Run("receipt survives revoked courtesy", func(t *testing.T) {
		f.addOwner(t, "owner-abuse", testNow.AddDate(0, -2, 0), "")

		if err := f.subscriptions.Create(ctx, entitlement.Record{
			ID: "rec-revoked", OwnerID: "owner-abuse", Status: entitlement.StatusCancelled,
			DiscountPercent: intPtr(100), CreatedAt: testNow.AddDate(0, -1, 0),
		}); err != nil {
			t.Fatalf("create record: %v", err)
		}
		if err := f.receipts.Put(ctx, entitlement.Receipt{
			ID: "rcpt-3", OwnerID: "owner-abuse", ProductID: "com.agendahof.pro",
			TransactionID: "txn-3", ExpiresAt: testNow.AddDate(0, 1, 0),
		}); err != nil {
			t.Fatalf("put receipt: %v", err)
		}

		state, err := f.service.Evaluate(ctx, "owner-abuse")
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if !state.HasActiveSubscription {
			t.Error("expected the paid store purchase to survive courtesy revocation")
		}
	})
}

func TestEvaluate_FetchFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addOwner(t, "owner-1", testNow.AddDate(0, 0, -1), "")

	outage := errors.New("connection refused")
	svc := NewAccessService(
		f.accounts,
		&failingSubscriptionStore{SubscriptionStore: f.subscriptions, err: outage},
		f.receipts, f.clock, nil, zerolog.Nop(),
	)

	_, err := svc.Evaluate(ctx, "owner-1")
	if err == nil {
		t.Fatal("expected a fetch failure to surface as an error, not a no-access state")
	}
	if !errors.Is(err, outage) {
		t.Errorf("err = %v, want wrapped outage error", err)
	}
}

func TestEvaluate_UnknownPrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Evaluate(context.Background(), "ghost")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("err = %v, want wrapped ErrNotFound", err)
	}
}

func TestStateHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addOwner(t, "owner-1", testNow.AddDate(0, 0, -1), "")

	holder := NewStateHolder(f.service, "owner-1")
	if holder.Current().HasAccess() {
		t.Error("expected no-access sentinel before first refresh")
	}

	state, err := holder.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !state.IsInTrial {
		t.Error("expected trial state after refresh")
	}
	if !holder.Current().IsInTrial {
		t.Error("expected holder to keep the refreshed state")
	}

	// A failing refresh keeps the previous state.
	outage := errors.New("backend down")
	failing := NewAccessService(
		f.accounts,
		&failingSubscriptionStore{SubscriptionStore: f.subscriptions, err: outage},
		f.receipts, f.clock, nil, zerolog.Nop(),
	)
	holderWithOutage := &StateHolder{principalID: "owner-1", state: holder.Current(), service: failing}

	got, err := holderWithOutage.Refresh(ctx)
	if err == nil {
		t.Fatal("expected refresh error during outage")
	}
	if !got.IsInTrial || !holderWithOutage.Current().IsInTrial {
		t.Error("expected previous state preserved on refresh failure")
	}
}
