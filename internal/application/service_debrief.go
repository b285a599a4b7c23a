package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
)

// RecordDebrief writes the immutable after-action record for an episode.
// A closed episode rejects further debriefs unless the new one explicitly
// supersedes the previous record; history is corrected by appending, never by
// rewriting.
func (s *Service) RecordDebrief(ctx context.Context, episodeID, actingCaregiverID uuid.UUID, req DebriefRequest) (DebriefResponse, error) {
	if req.Outcome == "" {
		return DebriefResponse{}, fmt.Errorf("%w: outcome is required", domain.ErrInvalidInput)
	}
	if len(req.Feedback) > 500 {
		return DebriefResponse{}, fmt.Errorf("%w: feedback exceeds 500 characters", domain.ErrInvalidInput)
	}

	episode, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return DebriefResponse{}, err
	}
	pairing, err := s.pairings.GetByID(ctx, episode.PairingID)
	if err != nil {
		return DebriefResponse{}, err
	}
	if pairing.CaregiverID != actingCaregiverID {
		return DebriefResponse{}, domain.ErrUnauthorized
	}

	existing, err := s.debriefs.GetLatestByEpisode(ctx, episodeID)
	switch {
	case err == nil:
		if req.SupersedesID == nil || *req.SupersedesID != existing.DebriefID {
			return DebriefResponse{}, domain.ErrAlreadyClosed
		}
	case errors.Is(err, domain.ErrNotFound):
		if req.SupersedesID != nil {
			return DebriefResponse{}, fmt.Errorf("%w: no prior debrief to supersede", domain.ErrInvalidInput)
		}
	default:
		return DebriefResponse{}, err
	}

	now := s.nowFn()
	debrief := domain.Debrief{
		DebriefID:    uuid.New(),
		EpisodeID:    episodeID,
		PairingID:    episode.PairingID,
		Outcome:      req.Outcome,
		Difficulty:   req.Difficulty,
		Feedback:     req.Feedback,
		SupersedesID: req.SupersedesID,
		CreatedAt:    now,
	}
	if err := s.debriefs.Create(ctx, debrief); err != nil {
		return DebriefResponse{}, err
	}

	// The first debrief also closes a still-open episode; the conditional
	// resolve is a no-op when Resolve already ran.
	if !episode.Closed() {
		_, _ = s.episodes.Resolve(ctx, episodeID, "debriefed", now)
	}

	s.emitEvent(ctx, eventTypeDebriefRecorded, episode.PairingID.String(), map[string]any{
		"debrief_id": debrief.DebriefID,
		"episode_id": episodeID,
		"pairing_id": episode.PairingID,
		"outcome":    req.Outcome,
	})

	return DebriefResponse{
		DebriefID: debrief.DebriefID,
		EpisodeID: episodeID,
		CreatedAt: now,
	}, nil
}
