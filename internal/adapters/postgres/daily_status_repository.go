package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

type dailyStatusRepository struct {
	db *gorm.DB
}

// GetOrCreate relies on the unique (pairing_id, status_date) index. A losing
// concurrent insert falls through to the read of the winner's row.
func (r *dailyStatusRepository) GetOrCreate(ctx context.Context, params ports.DailyStatusUpsert) (domain.DailyStatus, error) {
	rec := dailyStatusModel{
		StatusID:         uuid.New(),
		PairingID:        params.PairingID,
		StatusDate:       params.StatusDate,
		CommunityCode:    params.CommunityCode,
		State:            string(domain.DailyUnconfirmed),
		CaregiverActions: "[]",
		CreatedAt:        params.Now,
		UpdatedAt:        params.Now,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "pairing_id"},
			{Name: "status_date"},
		},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return domain.DailyStatus{}, res.Error
	}
	if res.RowsAffected > 0 {
		return toDomainDailyStatus(rec), nil
	}
	return r.Get(ctx, params.PairingID, params.StatusDate)
}

func (r *dailyStatusRepository) Get(ctx context.Context, pairingID uuid.UUID, statusDate string) (domain.DailyStatus, error) {
	var rec dailyStatusModel
	if err := r.db.WithContext(ctx).
		Where("pairing_id = ?", pairingID).
		Where("status_date = ?", statusDate).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DailyStatus{}, domain.ErrNotFound
		}
		return domain.DailyStatus{}, err
	}
	return toDomainDailyStatus(rec), nil
}

func (r *dailyStatusRepository) ListRecent(ctx context.Context, pairingID uuid.UUID, days int, until string) ([]domain.DailyStatus, error) {
	var rows []dailyStatusModel
	if err := r.db.WithContext(ctx).
		Where("pairing_id = ?", pairingID).
		Where("status_date <= ?", until).
		Order("status_date DESC").
		Limit(days).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.DailyStatus, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainDailyStatus(row))
	}
	return result, nil
}

func (r *dailyStatusRepository) Transition(ctx context.Context, statusID uuid.UUID, fromState, toState domain.DailyState, confirmedAt *time.Time, helpFlag bool, now time.Time) (bool, error) {
	updates := map[string]any{
		"state":      string(toState),
		"help_flag":  helpFlag,
		"updated_at": now,
	}
	if confirmedAt != nil {
		updates["confirmed_at"] = *confirmedAt
	}
	res := r.db.WithContext(ctx).
		Model(&dailyStatusModel{}).
		Where("status_id = ?", statusID).
		Where("state = ?", string(fromState)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *dailyStatusRepository) SetCareActions(ctx context.Context, statusID uuid.UUID, actions []string, note string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&dailyStatusModel{}).
		Where("status_id = ?", statusID).
		Updates(map[string]any{
			"caregiver_actions":  marshalActions(actions),
			"actions_done_count": len(actions),
			"caregiver_note":     note,
			"updated_at":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *dailyStatusRepository) ListUnconfirmed(ctx context.Context, statusDate string, limit int) ([]domain.DailyStatus, error) {
	var rows []dailyStatusModel
	if err := r.db.WithContext(ctx).
		Where("status_date = ?", statusDate).
		Where("state = ?", string(domain.DailyUnconfirmed)).
		Order("pairing_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.DailyStatus, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainDailyStatus(row))
	}
	return result, nil
}
