package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/carerelay/carerelay/internal/application"
)

// SweepWorker periodically expires stale credentials and pairings and
// escalates pairings that missed the daily confirmation deadline.
type SweepWorker struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewSweepWorker(logger *slog.Logger, service *application.Service, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweepWorker{
		logger:   logger,
		service:  service,
		interval: interval,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweepOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *SweepWorker) sweepOnce(ctx context.Context) {
	now := time.Now().UTC()

	expiredCredentials, err := w.service.ExpirePendingCredentials(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "credential expiry sweep failed",
			"module", "events.sweep_worker",
			"layer", "adapter",
			"operation", "expire_pending_credentials",
			"outcome", "failure",
			"error", err,
		)
	}

	expiredPairings, err := w.service.ExpirePairings(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "pairing expiry sweep failed",
			"module", "events.sweep_worker",
			"layer", "adapter",
			"operation", "expire_pairings",
			"outcome", "failure",
			"error", err,
		)
	}

	escalated, err := w.service.SweepOverdue(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "overdue confirmation sweep failed",
			"module", "events.sweep_worker",
			"layer", "adapter",
			"operation", "sweep_overdue",
			"outcome", "failure",
			"error", err,
		)
	}

	if expiredCredentials > 0 || expiredPairings > 0 || escalated > 0 {
		w.logger.InfoContext(ctx, "sweep iteration completed",
			"module", "events.sweep_worker",
			"layer", "adapter",
			"operation", "sweep_once",
			"outcome", "success",
			"expired_credentials", expiredCredentials,
			"expired_pairings", expiredPairings,
			"escalated_count", escalated,
		)
	}
}
