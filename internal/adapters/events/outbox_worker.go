package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/ports"
)

// OutboxWorker drains the transactional outbox and hands each record to the
// publisher. Notify intents and audit events share one queue so per-pairing
// ordering holds; each drain claims its batch under a token so a crashed
// worker's rows become claimable again after the TTL.
type OutboxWorker struct {
	logger     *slog.Logger
	outbox     ports.OutboxRepository
	publisher  ports.EventPublisher
	interval   time.Duration
	batchSize  int
	claimTTL   time.Duration
	maxRetries int
}

func NewOutboxWorker(
	logger *slog.Logger,
	outbox ports.OutboxRepository,
	publisher ports.EventPublisher,
	interval time.Duration,
	batchSize int,
	claimTTL time.Duration,
	maxRetries int,
) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if claimTTL <= 0 {
		claimTTL = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxWorker{
		logger:     logger,
		outbox:     outbox,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		claimTTL:   claimTTL,
		maxRetries: maxRetries,
	}
}

// Run drains the outbox on every tick until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.drainOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox drain aborted",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "outbox_drain",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type drainTally struct {
	published    int
	retried      int
	deadLettered int
}

func (w *OutboxWorker) drainOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnpublished(ctx, w.batchSize, claimToken, time.Now().UTC().Add(w.claimTTL))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var tally drainTally
	for _, rec := range records {
		w.dispatch(ctx, rec, claimToken, &tally)
	}

	w.logger.InfoContext(ctx, "outbox drained",
		"module", "events.outbox_worker",
		"layer", "adapter",
		"operation", "outbox_drain",
		"outcome", "success",
		"claimed", len(records),
		"published", tally.published,
		"retried", tally.retried,
		"dead_lettered", tally.deadLettered,
	)
	return nil
}

// dispatch publishes one claimed record and settles its outbox row. Mark
// errors are swallowed: an unsettled claim simply expires and the record is
// re-claimed on a later drain, so delivery stays at-least-once.
func (w *OutboxWorker) dispatch(ctx context.Context, rec ports.OutboxRecord, claimToken string, tally *drainTally) {
	now := time.Now().UTC()

	if rec.RetryCount >= w.maxRetries {
		tally.deadLettered++
		_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, "gave up after max delivery attempts", now)
		return
	}

	err := w.publisher.Publish(ctx, rec.EventType, rec.Payload)
	if err == nil {
		tally.published++
		_ = w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now)
		return
	}

	attempts := rec.RetryCount + 1
	if attempts >= w.maxRetries {
		tally.deadLettered++
		w.logger.ErrorContext(ctx, "event delivery gave up",
			"module", "events.outbox_worker",
			"layer", "adapter",
			"operation", "publish_event",
			"outcome", "failure",
			"outbox_id", rec.OutboxID,
			"event_type", rec.EventType,
			"attempts", attempts,
			"error", err,
		)
		_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, err.Error(), now)
		return
	}

	tally.retried++
	w.logger.WarnContext(ctx, "event delivery failed, will retry",
		"module", "events.outbox_worker",
		"layer", "adapter",
		"operation", "publish_event",
		"outcome", "failure",
		"outbox_id", rec.OutboxID,
		"event_type", rec.EventType,
		"attempts", attempts,
		"error", err,
	)
	_ = w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, err.Error(), now)
}
