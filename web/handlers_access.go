package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/agendahof/accessgate/domain/access"
	"github.com/agendahof/accessgate/ports"
	"github.com/go-chi/chi/v5"
)

// AccessResponse is the JSON shape of an evaluated access state.
type AccessResponse struct {
	HasAccess             bool       `json:"has_access"`
	HasActiveSubscription bool       `json:"has_active_subscription"`
	IsInTrial             bool       `json:"is_in_trial"`
	IsCourtesy            bool       `json:"is_courtesy"`
	Tier                  string     `json:"tier"`
	Source                string     `json:"source"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
}

func toAccessResponse(s access.State) AccessResponse {
	return AccessResponse{
		HasAccess:             s.HasAccess(),
		HasActiveSubscription: s.HasActiveSubscription,
		IsInTrial:             s.IsInTrial,
		IsCourtesy:            s.IsCourtesy,
		Tier:                  string(s.Tier),
		Source:                string(s.Source),
		ExpiresAt:             s.ExpiresAt,
	}
}

// HandleGetAccess evaluates and returns the access state for a principal.
// A store failure is a 500, never a no-access body: clients must be able to
// tell "could not determine" apart from "determined no entitlement".
func (h *Handler) HandleGetAccess(w http.ResponseWriter, r *http.Request) {
	principalID := chi.URLParam(r, "principalID")
	if principalID == "" {
		writeError(w, http.StatusBadRequest, "missing principal id")
		return
	}

	state, err := h.access.Evaluate(r.Context(), principalID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown principal")
			return
		}
		h.logger.Error().Err(err).Str("principal_id", principalID).Msg("access evaluation failed")
		writeError(w, http.StatusInternalServerError, "could not determine entitlement")
		return
	}

	writeJSON(w, http.StatusOK, toAccessResponse(state))
}
