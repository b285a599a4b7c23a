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

type credentialRepository struct {
	db *gorm.DB
}

func (r *credentialRepository) GetByShortCodeHash(ctx context.Context, hash string) (domain.Credential, error) {
	return r.getByColumn(ctx, "short_code_hash", hash)
}

func (r *credentialRepository) GetByLinkTokenHash(ctx context.Context, hash string) (domain.Credential, error) {
	return r.getByColumn(ctx, "link_token_hash", hash)
}

func (r *credentialRepository) getByColumn(ctx context.Context, column, value string) (domain.Credential, error) {
	var rec credentialModel
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Credential{}, domain.ErrNotFound
		}
		return domain.Credential{}, err
	}
	return toDomainCredential(rec), nil
}

func (r *credentialRepository) GetByPairingID(ctx context.Context, pairingID uuid.UUID) (domain.Credential, error) {
	var rec credentialModel
	if err := r.db.WithContext(ctx).
		Where("pairing_id = ?", pairingID).
		Order("created_at DESC").
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Credential{}, domain.ErrNotFound
		}
		return domain.Credential{}, err
	}
	return toDomainCredential(rec), nil
}

func (r *credentialRepository) HashExists(ctx context.Context, shortCodeHash string, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&credentialModel{}).
		Where("short_code_hash = ?", shortCodeHash).
		Where("status = ?", string(domain.CredentialIssued)).
		Where("expires_at > ?", now).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RedeemTx is the at-most-once gate. The conditional update on redeemed_at IS
// NULL decides the single winner; everything else in the transaction rides on
// that one row. The expires_at clause keeps a redeem racing the expiry
// boundary from writing redeemed_at past it, even before a sweep tick.
func (r *credentialRepository) RedeemTx(ctx context.Context, credentialID uuid.UUID, redeemedAt time.Time, outboxEvent ports.OutboxEvent) (domain.Pairing, error) {
	var pairing domain.Pairing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&credentialModel{}).
			Where("credential_id = ?", credentialID).
			Where("redeemed_at IS NULL").
			Where("status = ?", string(domain.CredentialIssued)).
			Where("expires_at > ?", redeemedAt).
			Updates(map[string]any{
				"redeemed_at": redeemedAt,
				"status":      string(domain.CredentialRedeemed),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyRedeemed
		}

		var cred credentialModel
		if err := tx.Where("credential_id = ?", credentialID).Take(&cred).Error; err != nil {
			return err
		}

		activate := tx.Model(&pairingModel{}).
			Where("pairing_id = ?", cred.PairingID).
			Where("status = ?", string(domain.PairingPending)).
			Updates(map[string]any{
				"status":       string(domain.PairingActive),
				"activated_at": redeemedAt,
			})
		if activate.Error != nil {
			return activate.Error
		}
		if activate.RowsAffected == 0 {
			return domain.ErrConflict
		}

		outbox := outboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: cred.PairingID.String(),
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
		}
		if err := tx.Create(&outbox).Error; err != nil {
			return err
		}

		var pairingRec pairingModel
		if err := tx.Where("pairing_id = ?", cred.PairingID).Take(&pairingRec).Error; err != nil {
			return err
		}
		pairing = toDomainPairing(pairingRec)
		return nil
	})
	if err != nil {
		return domain.Pairing{}, err
	}
	return pairing, nil
}

func (r *credentialRepository) ExpireIssued(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&credentialModel{}).
		Where("status = ?", string(domain.CredentialIssued)).
		Where("expires_at <= ?", now).
		Update("status", string(domain.CredentialExpired))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
