package access

import (
	"testing"
	"time"

	"github.com/agendahof/accessgate/domain/plan"
)

func TestHasAccess(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"active subscription grants access", Active(plan.TierPro, &end, false, plan.SourceBackend), true},
		{"trial grants access", InTrial(end), true},
		{"courtesy grants access", Active(plan.TierCourtesy, nil, true, plan.SourceBackend), true},
		{"no access sentinel", NoAccess(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.HasAccess(); got != tt.want {
				t.Errorf("HasAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoAccess(t *testing.T) {
	s := NoAccess()
	if s.HasActiveSubscription || s.IsInTrial || s.IsCourtesy {
		t.Error("NoAccess() should carry no grants")
	}
	if s.Tier != plan.TierNone || s.Source != plan.SourceNone {
		t.Errorf("NoAccess() tier/source = %q/%q, want none/none", s.Tier, s.Source)
	}
	if s.ExpiresAt != nil {
		t.Error("NoAccess() should have nil ExpiresAt")
	}
}

func TestInTrial(t *testing.T) {
	end := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	s := InTrial(end)

	if !s.IsInTrial || s.HasActiveSubscription {
		t.Error("InTrial() should set IsInTrial only")
	}
	if s.Tier != plan.TierTrial {
		t.Errorf("InTrial() tier = %q, want trial", s.Tier)
	}
	if s.ExpiresAt == nil || !s.ExpiresAt.Equal(end) {
		t.Errorf("InTrial() ExpiresAt = %v, want %v", s.ExpiresAt, end)
	}
}
