// Package app contains the services that perform I/O at the edges of the
// pure evaluation core.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/agendahof/accessgate/domain/access"
	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/domain/plan"
	"github.com/agendahof/accessgate/domain/trial"
	"github.com/agendahof/accessgate/ports"
	"github.com/rs/zerolog"
)

// AccessMetrics is implemented by the metrics collector. The service treats
// a nil value as "metrics disabled".
type AccessMetrics interface {
	ObserveEvaluation(outcome, source string, seconds float64)
	CountUnrecognizedPlan(planID string)
}

// AccessService evaluates the access state for a principal.
// The evaluation itself is pure; this service only fetches the inputs and
// hands them to the domain layer with a single reference time.
type AccessService struct {
	accounts      ports.AccountStore
	subscriptions ports.SubscriptionStore
	receipts      ports.ReceiptStore
	clock         ports.Clock
	metrics       AccessMetrics
	logger        zerolog.Logger
}

// NewAccessService creates a new access evaluation service.
func NewAccessService(
	accounts ports.AccountStore,
	subscriptions ports.SubscriptionStore,
	receipts ports.ReceiptStore,
	clock ports.Clock,
	metrics AccessMetrics,
	logger zerolog.Logger,
) *AccessService {
	return &AccessService{
		accounts:      accounts,
		subscriptions: subscriptions,
		receipts:      receipts,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// Evaluate computes the access state for a principal.
//
// Order of consultation is fixed: staff linkage, backend entitlement
// records, store receipts, anti-abuse over revoked courtesy grants, trial
// window. A fetch failure surfaces as an error, never as a no-access state:
// "could not determine entitlement" must stay distinct from "determined no
// entitlement" or a transient outage would lock out paying customers.
func (s *AccessService) Evaluate(ctx context.Context, principalID string) (access.State, error) {
	now := s.clock.Now()

	account, err := s.accounts.Get(ctx, principalID)
	if err != nil {
		return access.State{}, fmt.Errorf("fetch account %s: %w", principalID, err)
	}

	// Staff inherit entitlement from their linked owner. Inactive or
	// unlinked staff resolve to no-access before any record fetch.
	target := account
	if account.Role == ports.RoleStaff {
		if !account.Active {
			s.logger.Debug().Str("principal_id", principalID).Msg("inactive staff member, no access")
			return s.finish(now, access.NoAccess()), nil
		}
		if account.OwnerID == "" {
			s.logger.Warn().Str("principal_id", principalID).Msg("staff member without linked owner, no access")
			return s.finish(now, access.NoAccess()), nil
		}
		target, err = s.accounts.Get(ctx, account.OwnerID)
		if err != nil {
			return access.State{}, fmt.Errorf("fetch linked owner %s: %w", account.OwnerID, err)
		}
	}

	records, err := s.subscriptions.ListByOwner(ctx, target.ID)
	if err != nil {
		return access.State{}, fmt.Errorf("fetch subscriptions for %s: %w", target.ID, err)
	}
	s.auditPlanIDs(records)

	// A valid paid or courtesy entitlement short-circuits; trial and
	// anti-abuse are not consulted.
	if state, ok := entitlement.ResolveBest(records, now); ok {
		return s.finish(now, state), nil
	}

	// BackendOverStore policy: store receipts are the second source and are
	// consulted before anti-abuse. A paid store purchase is never forfeited
	// by a revoked courtesy; only the free trial is.
	receipts, err := s.receipts.ListByOwner(ctx, target.ID)
	if err != nil {
		return access.State{}, fmt.Errorf("fetch receipts for %s: %w", target.ID, err)
	}
	if state, ok := entitlement.ResolveBestReceipt(receipts, now); ok {
		return s.finish(now, state), nil
	}

	cancelled, err := s.subscriptions.ListCancelledByOwner(ctx, target.ID)
	if err != nil {
		return access.State{}, fmt.Errorf("fetch cancelled subscriptions for %s: %w", target.ID, err)
	}
	if entitlement.HasRevokedCourtesy(cancelled) {
		s.logger.Info().Str("owner_id", target.ID).Msg("revoked courtesy grant, trial forfeited")
		return s.finish(now, access.NoAccess()), nil
	}

	return s.finish(now, trial.Evaluate(target.CreatedAt, target.TrialEndsAt, now)), nil
}

// auditPlanIDs flags plan identifiers the taxonomy does not recognize.
// They still default to basic for backward compatibility, but silently
// defaulting would hide data drift from the billing system.
func (s *AccessService) auditPlanIDs(records []entitlement.Record) {
	for _, r := range records {
		if r.IsCourtesy() || r.PlanID == nil {
			continue
		}
		if res := plan.ResolveTier(*r.PlanID); !res.Recognized {
			s.logger.Warn().
				Str("record_id", r.ID).
				Str("plan_id", *r.PlanID).
				Msg("unrecognized plan identifier, defaulting to basic tier")
			if s.metrics != nil {
				s.metrics.CountUnrecognizedPlan(*r.PlanID)
			}
		}
	}
}

// finish records evaluation metrics and passes the state through.
func (s *AccessService) finish(start time.Time, state access.State) access.State {
	if s.metrics != nil {
		outcome := "no_access"
		switch {
		case state.HasActiveSubscription:
			outcome = "subscription"
		case state.IsInTrial:
			outcome = "trial"
		}
		s.metrics.ObserveEvaluation(outcome, string(state.Source), s.clock.Now().Sub(start).Seconds())
	}
	return state
}
