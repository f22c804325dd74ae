// Package web provides the HTTP API surface: the access read endpoint, the
// billing webhook ingestion endpoint, health, and metrics.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/agendahof/accessgate/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handler provides the HTTP endpoints.
type Handler struct {
	access   *app.AccessService
	webhooks *app.BillingWebhookService
	logger   zerolog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(access *app.AccessService, webhooks *app.BillingWebhookService, logger zerolog.Logger) *Handler {
	return &Handler{
		access:   access,
		webhooks: webhooks,
		logger:   logger,
	}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/access/{principalID}", h.HandleGetAccess)
		r.Post("/webhooks/billing", h.HandleBillingWebhook)
	})

	return r
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
