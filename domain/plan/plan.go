// Package plan provides the plan-tier taxonomy and pure functions for
// mapping raw plan identifiers to tiers.
package plan

import "strings"

// Tier is the capability level granted by a plan.
type Tier string

const (
	TierNone     Tier = "none"
	TierTrial    Tier = "trial"
	TierCourtesy Tier = "courtesy"
	TierBasic    Tier = "basic"
	TierPro      Tier = "pro"
	TierPremium  Tier = "premium"
)

// Source identifies where an entitlement was billed.
type Source string

const (
	SourceNone    Source = "none"
	SourceBackend Source = "backend"
	SourceStore   Source = "store"
)

// capabilityRank orders tiers by capability. Courtesy, trial and none are
// zero-tier: they grant access but carry no plan capabilities of their own.
var capabilityRank = map[Tier]int{
	TierNone:     0,
	TierTrial:    0,
	TierCourtesy: 0,
	TierBasic:    1,
	TierPro:      2,
	TierPremium:  3,
}

// Rank returns the capability rank of a tier. Higher means more capable.
func Rank(t Tier) int {
	return capabilityRank[t]
}

// knownPlans maps plan and store-product identifiers that have actually been
// issued to their tier. Substring inference is the fallback for identifiers
// that predate this table.
var knownPlans = map[string]Tier{
	"clinic.basic.monthly":   TierBasic,
	"clinic.basic.yearly":    TierBasic,
	"clinic.pro.monthly":     TierPro,
	"clinic.pro.yearly":      TierPro,
	"clinic.premium.monthly": TierPremium,
	"clinic.premium.yearly":  TierPremium,
	"com.agendahof.basic":    TierBasic,
	"com.agendahof.pro":      TierPro,
	"com.agendahof.premium":  TierPremium,
}

// TierResult carries the resolved tier plus whether the identifier was
// recognized. Callers log and count unrecognized identifiers; this package
// stays pure.
type TierResult struct {
	Tier       Tier
	Recognized bool
}

// ResolveTier maps a plan identifier to its tier.
// Priority:
// 1. Explicit mapping table of known identifiers
// 2. Case-insensitive substring inference (legacy safety net)
// 3. Default to basic, flagged as unrecognized
// This is a PURE function.
func ResolveTier(planID string) TierResult {
	id := strings.ToLower(strings.TrimSpace(planID))
	if id == "" {
		return TierResult{Tier: TierBasic, Recognized: false}
	}

	if t, ok := knownPlans[id]; ok {
		return TierResult{Tier: t, Recognized: true}
	}

	if t, ok := inferTier(id); ok {
		return TierResult{Tier: t, Recognized: true}
	}

	return TierResult{Tier: TierBasic, Recognized: false}
}

// inferTier exists only as a backward-compatibility fallback for identifiers
// minted before the mapping table. The input must already be lowercased.
func inferTier(id string) (Tier, bool) {
	switch {
	case strings.Contains(id, "premium"):
		return TierPremium, true
	case strings.Contains(id, "pro"):
		return TierPro, true
	case strings.Contains(id, "basic"):
		return TierBasic, true
	}
	return TierNone, false
}
