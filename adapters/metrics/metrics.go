// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the access service.
type Collector struct {
	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram

	// Webhook metrics
	WebhookEventsTotal *prometheus.CounterVec

	// Taxonomy drift
	UnrecognizedPlans *prometheus.CounterVec
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered on a custom registry.
// Tests use this to avoid duplicate-registration panics.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	c := &Collector{
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "accessgate",
				Name:      "evaluations_total",
				Help:      "Access evaluations by outcome and entitlement source",
			},
			[]string{"outcome", "source"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "accessgate",
				Name:      "evaluation_duration_seconds",
				Help:      "Access evaluation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "accessgate",
				Name:      "webhook_events_total",
				Help:      "Billing webhook events by type and result",
			},
			[]string{"type", "result"},
		),
		UnrecognizedPlans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "accessgate",
				Name:      "unrecognized_plan_ids_total",
				Help:      "Plan identifiers the tier taxonomy could not map",
			},
			[]string{"plan_id"},
		),
	}

	reg.MustRegister(
		c.EvaluationsTotal,
		c.EvaluationDuration,
		c.WebhookEventsTotal,
		c.UnrecognizedPlans,
	)
	return c
}

// ObserveEvaluation records one completed evaluation.
func (c *Collector) ObserveEvaluation(outcome, source string, seconds float64) {
	c.EvaluationsTotal.WithLabelValues(outcome, source).Inc()
	c.EvaluationDuration.Observe(seconds)
}

// CountUnrecognizedPlan records a plan identifier that fell through the
// taxonomy to the basic default.
func (c *Collector) CountUnrecognizedPlan(planID string) {
	c.UnrecognizedPlans.WithLabelValues(planID).Inc()
}

// CountWebhookEvent records one processed billing webhook event.
func (c *Collector) CountWebhookEvent(eventType, result string) {
	c.WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}
