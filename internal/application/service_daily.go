package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

// RecordConfirm records today's safety confirmation. A second confirm on the
// same date is a no-op returning the existing record, never an error.
func (s *Service) RecordConfirm(ctx context.Context, req ConfirmRequest) (DailyStatusView, error) {
	pairing, err := s.activePairing(ctx, req.PairingID)
	if err != nil {
		return DailyStatusView{}, err
	}

	now := s.nowFn()
	statusDate := req.Date
	if statusDate == "" {
		statusDate = s.localDate(now)
	}

	status, err := s.daily.GetOrCreate(ctx, ports.DailyStatusUpsert{
		PairingID:     pairing.PairingID,
		StatusDate:    statusDate,
		CommunityCode: pairing.CommunityCode,
		Now:           now,
	})
	if err != nil {
		return DailyStatusView{}, err
	}

	if status.State == domain.DailyConfirmed {
		return toDailyView(status), nil
	}
	if !domain.CanTransitionDaily(status.State, domain.DailyConfirmed) {
		return DailyStatusView{}, fmt.Errorf("%w: day %s is already %s", domain.ErrConflict, statusDate, status.State)
	}
	if domain.IsSiblingOverwrite(status.State, domain.DailyConfirmed) {
		appLogger().WarnContext(ctx, "confirm overwrote a sibling terminal state",
			"operation", "record_confirm",
			"outcome", "success",
			"pairing_id", pairing.PairingID,
			"status_date", statusDate,
			"previous_state", status.State,
		)
	}

	moved, err := s.daily.Transition(ctx, status.StatusID, status.State, domain.DailyConfirmed, &now, status.HelpFlag, now)
	if err != nil {
		return DailyStatusView{}, err
	}
	if !moved {
		// Another writer changed the row between read and update; re-read and
		// report the state that actually won.
		current, err := s.daily.Get(ctx, pairing.PairingID, statusDate)
		if err != nil {
			return DailyStatusView{}, err
		}
		return toDailyView(current), nil
	}

	s.emitEvent(ctx, eventTypeDailyConfirmed, pairing.PairingID.String(), map[string]any{
		"pairing_id":   pairing.PairingID,
		"status_date":  statusDate,
		"confirmed_at": now,
	})

	status.State = domain.DailyConfirmed
	status.ConfirmedAt = &now
	return toDailyView(status), nil
}

// RecordHelp flags today as help-requested and synchronously opens an
// escalation episode; the first contact is notified without waiting for a sweep.
func (s *Service) RecordHelp(ctx context.Context, req ConfirmRequest) (DailyStatusView, error) {
	pairing, err := s.activePairing(ctx, req.PairingID)
	if err != nil {
		return DailyStatusView{}, err
	}

	now := s.nowFn()
	statusDate := req.Date
	if statusDate == "" {
		statusDate = s.localDate(now)
	}

	status, err := s.daily.GetOrCreate(ctx, ports.DailyStatusUpsert{
		PairingID:     pairing.PairingID,
		StatusDate:    statusDate,
		CommunityCode: pairing.CommunityCode,
		Now:           now,
	})
	if err != nil {
		return DailyStatusView{}, err
	}

	if status.State != domain.DailyHelpRequested {
		if !domain.CanTransitionDaily(status.State, domain.DailyHelpRequested) {
			return DailyStatusView{}, fmt.Errorf("%w: day %s is already %s", domain.ErrConflict, statusDate, status.State)
		}
		if domain.IsSiblingOverwrite(status.State, domain.DailyHelpRequested) {
			appLogger().WarnContext(ctx, "help request overwrote a sibling terminal state",
				"operation", "record_help",
				"outcome", "success",
				"pairing_id", pairing.PairingID,
				"status_date", statusDate,
				"previous_state", status.State,
			)
		}
		if _, err := s.daily.Transition(ctx, status.StatusID, status.State, domain.DailyHelpRequested, status.ConfirmedAt, true, now); err != nil {
			return DailyStatusView{}, err
		}
	}

	episode, err := s.startEpisode(ctx, pairing, statusDate, "help-requested")
	if err != nil {
		return DailyStatusView{}, err
	}

	s.emitEvent(ctx, eventTypeDailyHelp, pairing.PairingID.String(), map[string]any{
		"pairing_id":  pairing.PairingID,
		"status_date": statusDate,
		"episode_id":  episode.EpisodeID,
	})

	status.State = domain.DailyHelpRequested
	status.HelpFlag = true
	view := toDailyView(status)
	view.EpisodeID = &episode.EpisodeID
	return view, nil
}

// RecordCareActions stores the caregiver's action log and note for today.
func (s *Service) RecordCareActions(ctx context.Context, pairingID, actingCaregiverID uuid.UUID, req CareActionsRequest) error {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return err
	}
	if pairing.CaregiverID != actingCaregiverID {
		return domain.ErrUnauthorized
	}
	if len(req.Note) > 300 {
		return fmt.Errorf("%w: note exceeds 300 characters", domain.ErrInvalidInput)
	}

	now := s.nowFn()
	status, err := s.daily.GetOrCreate(ctx, ports.DailyStatusUpsert{
		PairingID:     pairing.PairingID,
		StatusDate:    s.localDate(now),
		CommunityCode: pairing.CommunityCode,
		Now:           now,
	})
	if err != nil {
		return err
	}
	return s.daily.SetCareActions(ctx, status.StatusID, req.Actions, req.Note, now)
}

// SweepOverdue escalates every active pairing whose day is still unconfirmed
// past the deadline. Each row is handled independently with a conditional
// transition, so the sweep is safe to interrupt, resume, and run concurrently
// with itself: already-escalated rows simply fail the compare and are skipped.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	statusDate := s.localDate(now)
	if now.Before(s.deadlineFor(statusDate)) {
		return 0, nil
	}

	escalated := 0
	for offset := 0; ; offset += s.cfg.SweepBatchSize {
		ids, err := s.pairings.ListActiveIDs(ctx, s.cfg.SweepBatchSize, offset)
		if err != nil {
			return escalated, err
		}
		if len(ids) == 0 {
			break
		}
		for _, pairingID := range ids {
			if err := ctx.Err(); err != nil {
				return escalated, err
			}
			moved, err := s.escalateIfUnconfirmed(ctx, pairingID, statusDate, now)
			if err != nil {
				appLogger().ErrorContext(ctx, "overdue escalation failed",
					"operation", "sweep_overdue",
					"outcome", "failure",
					"pairing_id", pairingID,
					"error", err,
				)
				continue
			}
			if moved {
				escalated++
			}
		}
		if len(ids) < s.cfg.SweepBatchSize {
			break
		}
	}

	if escalated > 0 {
		appLogger().InfoContext(ctx, "overdue sweep completed",
			"operation", "sweep_overdue",
			"outcome", "success",
			"status_date", statusDate,
			"escalated_count", escalated,
		)
	}
	return escalated, nil
}

func (s *Service) escalateIfUnconfirmed(ctx context.Context, pairingID uuid.UUID, statusDate string, now time.Time) (bool, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return false, err
	}
	if pairing.Status != domain.PairingActive {
		return false, nil
	}

	status, err := s.daily.GetOrCreate(ctx, ports.DailyStatusUpsert{
		PairingID:     pairingID,
		StatusDate:    statusDate,
		CommunityCode: pairing.CommunityCode,
		Now:           now,
	})
	if err != nil {
		return false, err
	}
	if status.State != domain.DailyUnconfirmed {
		return false, nil
	}

	moved, err := s.daily.Transition(ctx, status.StatusID, domain.DailyUnconfirmed, domain.DailyEscalated, nil, status.HelpFlag, now)
	if err != nil {
		return false, err
	}
	if !moved {
		// A concurrent sweep or a late confirm won the row; nothing to do.
		return false, nil
	}

	if _, err := s.startEpisode(ctx, pairing, statusDate, "overdue"); err != nil {
		return true, err
	}
	return true, nil
}
