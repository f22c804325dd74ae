package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/agendahof/accessgate/app"
	"github.com/agendahof/accessgate/domain/entitlement"
)

// webhookPayload is the provider-agnostic billing event envelope.
type webhookPayload struct {
	Type            string     `json:"type"`
	RecordID        string     `json:"record_id"`
	OwnerID         string     `json:"owner_id"`
	PlanID          *string    `json:"plan_id"`
	Status          string     `json:"status"`
	DiscountPercent *int       `json:"discount_percent"`
	PeriodStart     *time.Time `json:"period_start"`
	PeriodEnd       *time.Time `json:"period_end"`
	NextBillingAt   *time.Time `json:"next_billing_at"`
}

// HandleBillingWebhook ingests billing-system events.
// Application-level failures still answer 200 so the billing system does not
// retry events we have already rejected for good reason; only malformed
// payloads get a 4xx.
func (h *Handler) HandleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("malformed billing webhook payload")
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	ev := app.SubscriptionEvent{
		RecordID:        payload.RecordID,
		OwnerID:         payload.OwnerID,
		PlanID:          payload.PlanID,
		Status:          entitlement.Status(payload.Status),
		DiscountPercent: payload.DiscountPercent,
		PeriodStart:     payload.PeriodStart,
		PeriodEnd:       payload.PeriodEnd,
		NextBillingAt:   payload.NextBillingAt,
	}

	ctx := r.Context()
	var err error
	switch payload.Type {
	case "subscription.created":
		err = h.webhooks.HandleSubscriptionCreated(ctx, ev)
	case "subscription.updated":
		err = h.webhooks.HandleSubscriptionUpdated(ctx, ev)
	case "subscription.cancelled":
		err = h.webhooks.HandleSubscriptionCancelled(ctx, payload.RecordID)
	default:
		h.logger.Warn().Str("type", payload.Type).Msg("unknown billing webhook type")
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	if err != nil {
		h.logger.Error().Err(err).
			Str("type", payload.Type).
			Str("record_id", payload.RecordID).
			Msg("failed to apply billing webhook event")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
