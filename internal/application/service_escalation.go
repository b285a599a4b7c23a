package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
)

// startEpisode opens the escalation case for a pairing day and notifies the
// primary contact. Creation is idempotent per (pairing, date): a concurrent
// help signal and overdue sweep converge on the same episode.
func (s *Service) startEpisode(ctx context.Context, pairing domain.Pairing, statusDate, reason string) (domain.EscalationEpisode, error) {
	contacts, err := s.pairings.ListContacts(ctx, pairing.PairingID)
	if err != nil {
		return domain.EscalationEpisode{}, err
	}

	now := s.nowFn()
	candidate := domain.EscalationEpisode{
		EpisodeID:    uuid.New(),
		PairingID:    pairing.PairingID,
		StatusDate:   statusDate,
		Stage:        domain.StageForContactIndex(0, len(contacts)),
		ContactIndex: 0,
		Reason:       reason,
		StartedAt:    now,
	}
	if len(contacts) > 0 {
		candidate.PrimaryNotifiedAt = &now
	} else {
		candidate.ExhaustedAt = &now
	}

	episode, created, err := s.episodes.Create(ctx, candidate)
	if err != nil {
		return domain.EscalationEpisode{}, err
	}
	if !created {
		return episode, nil
	}

	s.emitEvent(ctx, eventTypeEscalationStarted, pairing.PairingID.String(), map[string]any{
		"episode_id":  episode.EpisodeID,
		"pairing_id":  pairing.PairingID,
		"status_date": statusDate,
		"reason":      reason,
		"stage":       episode.Stage,
	})

	if len(contacts) == 0 {
		appLogger().WarnContext(ctx, "escalation opened with empty contact chain",
			"operation", "start_episode",
			"outcome", "warning",
			"pairing_id", pairing.PairingID,
			"episode_id", episode.EpisodeID,
		)
		return episode, nil
	}

	s.notifyContact(ctx, episode, contacts[0])
	return episode, nil
}

// Advance notifies the next contact in the chain and moves the stage forward.
// Once the chain is exhausted the episode waits for an explicit Resolve or a
// debrief; advancing it further is a conflict.
func (s *Service) Advance(ctx context.Context, episodeID, actingCaregiverID uuid.UUID) (AdvanceResponse, error) {
	episode, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return AdvanceResponse{}, err
	}
	pairing, err := s.pairings.GetByID(ctx, episode.PairingID)
	if err != nil {
		return AdvanceResponse{}, err
	}
	if pairing.CaregiverID != actingCaregiverID {
		return AdvanceResponse{}, domain.ErrUnauthorized
	}
	if episode.Closed() {
		return AdvanceResponse{}, domain.ErrAlreadyClosed
	}
	if episode.Stage == domain.StageExhausted {
		return AdvanceResponse{}, fmt.Errorf("%w: contact chain already exhausted", domain.ErrConflict)
	}

	contacts, err := s.pairings.ListContacts(ctx, episode.PairingID)
	if err != nil {
		return AdvanceResponse{}, err
	}

	now := s.nowFn()
	nextIndex := episode.ContactIndex + 1
	nextStage := domain.StageForContactIndex(nextIndex, len(contacts))
	if err := s.episodes.AdvanceStage(ctx, episodeID, nextStage, nextIndex, now); err != nil {
		return AdvanceResponse{}, err
	}

	resp := AdvanceResponse{
		EpisodeID:    episodeID,
		Stage:        nextStage,
		ContactIndex: nextIndex,
	}
	if nextStage == domain.StageExhausted {
		appLogger().WarnContext(ctx, "escalation chain exhausted",
			"operation", "advance_episode",
			"outcome", "warning",
			"episode_id", episodeID,
			"pairing_id", episode.PairingID,
		)
		return resp, nil
	}

	episode.Stage = nextStage
	episode.ContactIndex = nextIndex
	s.notifyContact(ctx, episode, contacts[nextIndex])
	resp.NotifiedRef = contacts[nextIndex].ContactRef
	return resp, nil
}

// Resolve closes the episode with a caregiver-supplied outcome. The daily
// status history is deliberately left untouched: resolution records what
// happened after the fact, it does not rewrite the day.
func (s *Service) Resolve(ctx context.Context, episodeID, actingCaregiverID uuid.UUID, req ResolveRequest) error {
	resolution := req.Resolution
	if resolution == "" {
		return fmt.Errorf("%w: resolution is required", domain.ErrInvalidInput)
	}

	episode, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return err
	}
	pairing, err := s.pairings.GetByID(ctx, episode.PairingID)
	if err != nil {
		return err
	}
	if pairing.CaregiverID != actingCaregiverID {
		return domain.ErrUnauthorized
	}

	now := s.nowFn()
	closed, err := s.episodes.Resolve(ctx, episodeID, resolution, now)
	if err != nil {
		return err
	}
	if !closed {
		return domain.ErrAlreadyClosed
	}

	s.emitEvent(ctx, eventTypeEscalationClosed, episode.PairingID.String(), map[string]any{
		"episode_id":  episodeID,
		"pairing_id":  episode.PairingID,
		"resolution":  resolution,
		"resolved_at": now,
	})
	return nil
}

// notifyContact emits a notify intent naming the contact and episode. What the
// message says, and over which channel, is the delivery system's business.
func (s *Service) notifyContact(ctx context.Context, episode domain.EscalationEpisode, contact domain.Contact) {
	s.emitEvent(ctx, eventTypeNotifyContact, episode.PairingID.String(), map[string]any{
		"episode_id":    episode.EpisodeID,
		"pairing_id":    episode.PairingID,
		"contact_ref":   contact.ContactRef,
		"contact_label": contact.Label,
		"stage":         episode.Stage,
		"status_date":   episode.StatusDate,
	})
}
