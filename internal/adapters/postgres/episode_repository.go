package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carerelay/carerelay/internal/domain"
)

type episodeRepository struct {
	db *gorm.DB
}

// Create is idempotent per (pairing, date): a concurrent creator loses the
// insert and gets the existing episode back with created=false.
func (r *episodeRepository) Create(ctx context.Context, episode domain.EscalationEpisode) (domain.EscalationEpisode, bool, error) {
	rec := episodeModel{
		EpisodeID:         episode.EpisodeID,
		PairingID:         episode.PairingID,
		StatusDate:        episode.StatusDate,
		Stage:             string(episode.Stage),
		ContactIndex:      episode.ContactIndex,
		Reason:            episode.Reason,
		StartedAt:         episode.StartedAt,
		PrimaryNotifiedAt: episode.PrimaryNotifiedAt,
		BackupNotifiedAt:  episode.BackupNotifiedAt,
		ExhaustedAt:       episode.ExhaustedAt,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "pairing_id"},
			{Name: "status_date"},
		},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return domain.EscalationEpisode{}, false, res.Error
	}
	if res.RowsAffected > 0 {
		return toDomainEpisode(rec), true, nil
	}

	var existing episodeModel
	if err := r.db.WithContext(ctx).
		Where("pairing_id = ?", episode.PairingID).
		Where("status_date = ?", episode.StatusDate).
		Take(&existing).Error; err != nil {
		return domain.EscalationEpisode{}, false, err
	}
	return toDomainEpisode(existing), false, nil
}

func (r *episodeRepository) GetByID(ctx context.Context, episodeID uuid.UUID) (domain.EscalationEpisode, error) {
	var rec episodeModel
	if err := r.db.WithContext(ctx).Where("episode_id = ?", episodeID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EscalationEpisode{}, domain.ErrNotFound
		}
		return domain.EscalationEpisode{}, err
	}
	return toDomainEpisode(rec), nil
}

func (r *episodeRepository) ListOpenByPairing(ctx context.Context, pairingID uuid.UUID) ([]domain.EscalationEpisode, error) {
	var rows []episodeModel
	if err := r.db.WithContext(ctx).
		Where("pairing_id = ?", pairingID).
		Where("resolved_at IS NULL").
		Order("started_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.EscalationEpisode, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainEpisode(row))
	}
	return result, nil
}

func (r *episodeRepository) AdvanceStage(ctx context.Context, episodeID uuid.UUID, stage domain.EscalationStage, contactIndex int, at time.Time) error {
	updates := map[string]any{
		"stage":         string(stage),
		"contact_index": contactIndex,
	}
	switch stage {
	case domain.StageNotifyPrimary:
		updates["primary_notified_at"] = at
	case domain.StageNotifyBackup:
		updates["backup_notified_at"] = at
	case domain.StageExhausted:
		updates["exhausted_at"] = at
	}
	res := r.db.WithContext(ctx).
		Model(&episodeModel{}).
		Where("episode_id = ?", episodeID).
		Where("resolved_at IS NULL").
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyClosed
	}
	return nil
}

func (r *episodeRepository) Resolve(ctx context.Context, episodeID uuid.UUID, resolution string, resolvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&episodeModel{}).
		Where("episode_id = ?", episodeID).
		Where("resolved_at IS NULL").
		Updates(map[string]any{
			"resolved_at": resolvedAt,
			"resolution":  resolution,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
