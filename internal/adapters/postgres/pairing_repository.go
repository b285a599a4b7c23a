package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

type pairingRepository struct {
	db *gorm.DB
}

func (r *pairingRepository) CreateWithCredentialTx(ctx context.Context, params ports.CreatePairingTxParams, outboxEvent ports.OutboxEvent) (domain.Pairing, domain.Credential, error) {
	var (
		pairing    domain.Pairing
		credential domain.Credential
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pairingRec := pairingModel{
			PairingID:     uuid.New(),
			CaregiverID:   params.CaregiverID,
			DependentRef:  params.DependentRef,
			CommunityCode: params.CommunityCode,
			Status:        string(domain.PairingPending),
			CreatedAt:     params.CreatedAt,
		}
		if params.PairingTTL > 0 {
			expires := params.CreatedAt.Add(params.PairingTTL)
			pairingRec.ExpiresAt = &expires
		}
		if err := tx.Create(&pairingRec).Error; err != nil {
			return err
		}

		for _, c := range params.Contacts {
			contactRec := contactModel{
				PairingID:  pairingRec.PairingID,
				Position:   c.Position,
				ContactRef: c.ContactRef,
				Label:      c.Label,
				CreatedAt:  params.CreatedAt,
			}
			if err := tx.Create(&contactRec).Error; err != nil {
				return err
			}
		}

		credentialRec := credentialModel{
			CredentialID:  uuid.New(),
			PairingID:     pairingRec.PairingID,
			ShortCodeHash: params.ShortCodeHash,
			LinkTokenHash: params.LinkTokenHash,
			CommunityCode: params.CommunityCode,
			Status:        string(domain.CredentialIssued),
			ExpiresAt:     params.CreatedAt.Add(params.CredentialTTL),
			CreatedAt:     params.CreatedAt,
		}
		if err := tx.Create(&credentialRec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrIssuanceCollision
			}
			return err
		}

		outbox := outboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: pairingRec.PairingID.String(),
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
		}
		if err := tx.Create(&outbox).Error; err != nil {
			return err
		}

		pairing = toDomainPairing(pairingRec)
		credential = toDomainCredential(credentialRec)
		return nil
	})
	if err != nil {
		return domain.Pairing{}, domain.Credential{}, err
	}
	return pairing, credential, nil
}

func (r *pairingRepository) GetByID(ctx context.Context, pairingID uuid.UUID) (domain.Pairing, error) {
	var rec pairingModel
	if err := r.db.WithContext(ctx).Where("pairing_id = ?", pairingID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Pairing{}, domain.ErrNotFound
		}
		return domain.Pairing{}, err
	}
	return toDomainPairing(rec), nil
}

func (r *pairingRepository) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]domain.Pairing, error) {
	var rows []pairingModel
	query := r.db.WithContext(ctx).
		Where("caregiver_id = ?", caregiverID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Pairing, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainPairing(row))
	}
	return result, nil
}

func (r *pairingRepository) ListActiveIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&pairingModel{}).
		Where("status = ?", string(domain.PairingActive)).
		Order("pairing_id ASC").
		Limit(limit).
		Offset(offset).
		Pluck("pairing_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *pairingRepository) ListContacts(ctx context.Context, pairingID uuid.UUID) ([]domain.Contact, error) {
	var rows []contactModel
	if err := r.db.WithContext(ctx).
		Where("pairing_id = ?", pairingID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Contact, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainContact(row))
	}
	return result, nil
}

func (r *pairingRepository) Revoke(ctx context.Context, pairingID uuid.UUID, revokedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&pairingModel{}).
		Where("pairing_id = ?", pairingID).
		Where("status IN ?", []string{string(domain.PairingPending), string(domain.PairingActive)}).
		Updates(map[string]any{
			"status":     string(domain.PairingRevoked),
			"revoked_at": revokedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&pairingModel{}).Where("pairing_id = ?", pairingID).Count(&exists).Error; err != nil {
			return false, err
		}
		if exists == 0 {
			return false, domain.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

func (r *pairingRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&pairingModel{}).
		Where("status IN ?", []string{string(domain.PairingPending), string(domain.PairingActive)}).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now).
		Update("status", string(domain.PairingExpired))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
