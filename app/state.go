package app

import (
	"context"
	"sync"

	"github.com/agendahof/accessgate/domain/access"
)

// StateHolder keeps the last computed access state for one principal and
// exposes a recompute entry point. It is the only stateful piece around the
// evaluation core: the state value is swapped wholesale under the lock, so
// readers never observe a partial update. Construct one per consumer with
// explicit dependencies; there is no package-level instance.
type StateHolder struct {
	mu          sync.RWMutex
	principalID string
	state       access.State
	service     *AccessService
}

// NewStateHolder creates a holder for the given principal. The initial
// state is the no-access sentinel until Refresh is called.
func NewStateHolder(service *AccessService, principalID string) *StateHolder {
	return &StateHolder{
		principalID: principalID,
		state:       access.NoAccess(),
		service:     service,
	}
}

// Current returns the last computed state.
func (h *StateHolder) Current() access.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Refresh re-evaluates and stores the result. Re-evaluation is idempotent
// and safe to invoke repeatedly (after login, after a purchase, after
// returning to foreground). On error the previous state is kept: a failed
// fetch must not downgrade a paying user to no-access.
func (h *StateHolder) Refresh(ctx context.Context) (access.State, error) {
	state, err := h.service.Evaluate(ctx, h.principalID)
	if err != nil {
		return h.Current(), err
	}

	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
	return state, nil
}
