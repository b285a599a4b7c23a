package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carerelay/carerelay/internal/domain"
)

type debriefRepository struct {
	db *gorm.DB
}

func (r *debriefRepository) Create(ctx context.Context, debrief domain.Debrief) error {
	rec := debriefModel{
		DebriefID:    debrief.DebriefID,
		EpisodeID:    debrief.EpisodeID,
		PairingID:    debrief.PairingID,
		Outcome:      debrief.Outcome,
		Difficulty:   debrief.Difficulty,
		Feedback:     debrief.Feedback,
		SupersedesID: debrief.SupersedesID,
		CreatedAt:    debrief.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *debriefRepository) GetLatestByEpisode(ctx context.Context, episodeID uuid.UUID) (domain.Debrief, error) {
	var rec debriefModel
	if err := r.db.WithContext(ctx).
		Where("episode_id = ?", episodeID).
		Order("created_at DESC").
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Debrief{}, domain.ErrNotFound
		}
		return domain.Debrief{}, err
	}
	return toDomainDebrief(rec), nil
}
