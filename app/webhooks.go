package app

import (
	"context"
	"fmt"
	"time"

	"github.com/agendahof/accessgate/domain/entitlement"
	"github.com/agendahof/accessgate/ports"
	"github.com/rs/zerolog"
)

// WebhookMetrics counts processed billing webhook events.
type WebhookMetrics interface {
	CountWebhookEvent(eventType, result string)
}

// BillingWebhookService applies billing-system webhook events to the
// subscription store. It is the sole writer of record status, which is why
// the validator trusts "active" unconditionally.
type BillingWebhookService struct {
	subscriptions ports.SubscriptionStore
	idGen         ports.IDGenerator
	clock         ports.Clock
	metrics       WebhookMetrics
	logger        zerolog.Logger
}

// NewBillingWebhookService creates a new billing webhook service.
func NewBillingWebhookService(
	subscriptions ports.SubscriptionStore,
	idGen ports.IDGenerator,
	clock ports.Clock,
	metrics WebhookMetrics,
	logger zerolog.Logger,
) *BillingWebhookService {
	return &BillingWebhookService{
		subscriptions: subscriptions,
		idGen:         idGen,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// SubscriptionEvent is the provider-agnostic payload of a billing webhook.
type SubscriptionEvent struct {
	RecordID        string
	OwnerID         string
	PlanID          *string
	Status          entitlement.Status
	DiscountPercent *int
	PeriodStart     *time.Time
	PeriodEnd       *time.Time
	NextBillingAt   *time.Time
}

// HandleSubscriptionCreated stores a new subscription record.
func (s *BillingWebhookService) HandleSubscriptionCreated(ctx context.Context, ev SubscriptionEvent) error {
	s.logger.Info().
		Str("record_id", ev.RecordID).
		Str("owner_id", ev.OwnerID).
		Str("status", string(ev.Status)).
		Msg("handling subscription created webhook")

	if ev.OwnerID == "" {
		s.count("subscription.created", "rejected")
		return fmt.Errorf("subscription created event without owner id")
	}

	id := ev.RecordID
	if id == "" {
		id = s.idGen.New()
	}

	rec := entitlement.Record{
		ID:                 id,
		OwnerID:            ev.OwnerID,
		PlanID:             ev.PlanID,
		Status:             ev.Status,
		DiscountPercent:    ev.DiscountPercent,
		CurrentPeriodStart: ev.PeriodStart,
		CurrentPeriodEnd:   ev.PeriodEnd,
		NextBillingAt:      ev.NextBillingAt,
		CreatedAt:          s.clock.Now().UTC(),
	}
	if rec.Status == "" {
		rec.Status = entitlement.StatusActive
	}

	if err := s.subscriptions.Create(ctx, rec); err != nil {
		s.count("subscription.created", "error")
		return fmt.Errorf("create subscription record: %w", err)
	}

	s.count("subscription.created", "ok")
	return nil
}

// HandleSubscriptionUpdated applies a status transition to an existing
// record. Billing dates on the event replace the stored ones when present.
func (s *BillingWebhookService) HandleSubscriptionUpdated(ctx context.Context, ev SubscriptionEvent) error {
	s.logger.Info().
		Str("record_id", ev.RecordID).
		Str("status", string(ev.Status)).
		Msg("handling subscription updated webhook")

	rec, err := s.subscriptions.Get(ctx, ev.RecordID)
	if err != nil {
		s.count("subscription.updated", "error")
		return fmt.Errorf("find subscription record %s: %w", ev.RecordID, err)
	}

	if ev.Status != "" {
		rec.Status = ev.Status
	}
	if ev.PlanID != nil {
		rec.PlanID = ev.PlanID
	}
	if ev.DiscountPercent != nil {
		rec.DiscountPercent = ev.DiscountPercent
	}
	if ev.PeriodStart != nil {
		rec.CurrentPeriodStart = ev.PeriodStart
	}
	if ev.PeriodEnd != nil {
		rec.CurrentPeriodEnd = ev.PeriodEnd
	}
	if ev.NextBillingAt != nil {
		rec.NextBillingAt = ev.NextBillingAt
	}

	if err := s.subscriptions.Update(ctx, rec); err != nil {
		s.count("subscription.updated", "error")
		return fmt.Errorf("update subscription record %s: %w", rec.ID, err)
	}

	s.logger.Info().
		Str("record_id", rec.ID).
		Str("owner_id", rec.OwnerID).
		Str("status", string(rec.Status)).
		Msg("subscription record updated")

	s.count("subscription.updated", "ok")
	return nil
}

// HandleSubscriptionCancelled marks a record as cancelled.
func (s *BillingWebhookService) HandleSubscriptionCancelled(ctx context.Context, recordID string) error {
	s.logger.Info().
		Str("record_id", recordID).
		Msg("handling subscription cancelled webhook")

	rec, err := s.subscriptions.Get(ctx, recordID)
	if err != nil {
		s.count("subscription.cancelled", "error")
		return fmt.Errorf("find subscription record %s: %w", recordID, err)
	}

	rec.Status = entitlement.StatusCancelled

	if err := s.subscriptions.Update(ctx, rec); err != nil {
		s.count("subscription.cancelled", "error")
		return fmt.Errorf("update subscription record %s: %w", rec.ID, err)
	}

	s.count("subscription.cancelled", "ok")
	return nil
}

func (s *BillingWebhookService) count(eventType, result string) {
	if s.metrics != nil {
		s.metrics.CountWebhookEvent(eventType, result)
	}
}
