package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

const (
	eventTypeCredentialIssued  = "pairing.credential.issued"
	eventTypeCredentialExpired = "pairing.credential.expired"
	eventTypePairingRedeemed   = "pairing.redeemed"
	eventTypePairingRevoked    = "pairing.revoked"
	eventTypeDailyConfirmed    = "daily.confirmed"
	eventTypeDailyHelp         = "daily.help_requested"
	eventTypeEscalationStarted = "escalation.started"
	eventTypeNotifyContact     = "escalation.notify_contact"
	eventTypeEscalationClosed  = "escalation.resolved"
	eventTypeDebriefRecorded   = "debrief.recorded"
	eventTypeLockoutTriggered  = "guard.lockout_triggered"
)

func appLogger() *slog.Logger {
	return slog.Default().With(
		"service", "carerelay-pairing",
		"module", "application",
		"layer", "application",
	)
}

// localDate renders t's calendar date in the service's configured day boundary.
func (s *Service) localDate(t time.Time) string {
	return t.In(s.cfg.Timezone).Format("2006-01-02")
}

// deadlineFor is the UTC instant after which the given local date counts as
// missed. The hour comes from configuration, not from the pairing.
func (s *Service) deadlineFor(statusDate string) time.Time {
	day, err := time.ParseInLocation("2006-01-02", statusDate, s.cfg.Timezone)
	if err != nil {
		return s.nowFn()
	}
	return day.Add(time.Duration(s.cfg.DailyDeadline) * time.Hour).UTC()
}

// emitEvent enqueues an audit/notify outbox event. Delivery failures are
// logged rather than propagated: the owning mutation has already committed
// and every emission site treats the event as best-effort signal.
func (s *Service) emitEvent(ctx context.Context, eventType, partitionKey string, payload map[string]any) {
	raw, _ := json.Marshal(payload)
	err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   s.nowFn(),
	})
	if err != nil {
		appLogger().ErrorContext(ctx, "outbox enqueue failed",
			"operation", "emit_event",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

// activePairing loads a pairing and requires it to be redeemable-into, i.e.
// currently active. Pending, expired, and revoked pairings reject daily writes.
func (s *Service) activePairing(ctx context.Context, pairingID uuid.UUID) (domain.Pairing, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return domain.Pairing{}, err
	}
	if pairing.Status != domain.PairingActive {
		return domain.Pairing{}, fmt.Errorf("%w: pairing %s is %s", domain.ErrConflict, pairingID, pairing.Status)
	}
	return pairing, nil
}

// buildEvent constructs an outbox event for code paths that write it inside
// the owning repository transaction instead of via emitEvent.
func (s *Service) buildEvent(eventType, partitionKey string, payload map[string]any) ports.OutboxEvent {
	raw, _ := json.Marshal(payload)
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   s.nowFn(),
	}
}
