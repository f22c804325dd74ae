// Package access provides the AccessState value type.
// A State is computed by the access service and replaced wholesale on every
// re-evaluation; it is never mutated in place.
package access

import (
	"time"

	"github.com/agendahof/accessgate/domain/plan"
)

// State is the evaluated access for a principal (immutable value type).
type State struct {
	HasActiveSubscription bool
	IsInTrial             bool
	IsCourtesy            bool
	Tier                  plan.Tier
	ExpiresAt             *time.Time // nil when open-ended (trusted active)
	Source                plan.Source
}

// HasAccess reports whether the principal may use the product.
func (s State) HasAccess() bool {
	return s.HasActiveSubscription || s.IsInTrial
}

// NoAccess is the sentinel for a principal with no entitlement of any kind.
func NoAccess() State {
	return State{Tier: plan.TierNone, Source: plan.SourceNone}
}

// Active builds the state for a valid paid or courtesy entitlement.
func Active(tier plan.Tier, expiresAt *time.Time, courtesy bool, source plan.Source) State {
	return State{
		HasActiveSubscription: true,
		IsCourtesy:            courtesy,
		Tier:                  tier,
		ExpiresAt:             expiresAt,
		Source:                source,
	}
}

// InTrial builds the state for an account inside its trial window.
func InTrial(trialEnd time.Time) State {
	return State{
		IsInTrial: true,
		Tier:      plan.TierTrial,
		ExpiresAt: &trialEnd,
		Source:    plan.SourceNone,
	}
}
