package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

// CreatePairing mints a pending pairing together with its single-use
// credential. Only keyed hashes of the short code and link token are stored;
// the plaintext secrets appear once in the response and nowhere else.
func (s *Service) CreatePairing(ctx context.Context, caregiverID uuid.UUID, req CreatePairingRequest) (CreatePairingResponse, error) {
	communityCode := strings.TrimSpace(req.CommunityCode)
	if communityCode == "" {
		return CreatePairingResponse{}, fmt.Errorf("%w: community_code is required", domain.ErrInvalidInput)
	}
	if len(req.ContactRefs) == 0 {
		return CreatePairingResponse{}, fmt.Errorf("%w: at least one escalation contact is required", domain.ErrInvalidInput)
	}

	contacts := make([]domain.Contact, 0, len(req.ContactRefs))
	for i, ref := range req.ContactRefs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return CreatePairingResponse{}, fmt.Errorf("%w: contact ref %d is empty", domain.ErrInvalidInput, i)
		}
		label := ""
		if i < len(req.ContactLabels) {
			label = strings.TrimSpace(req.ContactLabels[i])
		}
		contacts = append(contacts, domain.Contact{Position: i, ContactRef: ref, Label: label})
	}

	pairingTTL := s.cfg.PairingTTL
	if strings.TrimSpace(req.PairingTTL) != "" {
		parsed, err := time.ParseDuration(req.PairingTTL)
		if err != nil || parsed <= 0 {
			return CreatePairingResponse{}, fmt.Errorf("%w: invalid pairing_ttl", domain.ErrInvalidInput)
		}
		pairingTTL = parsed
	}

	shortCode, shortCodeHash, err := s.generateUniqueShortCode(ctx)
	if err != nil {
		return CreatePairingResponse{}, err
	}
	linkToken, err := s.codes.LinkToken()
	if err != nil {
		return CreatePairingResponse{}, fmt.Errorf("generate link token: %w", err)
	}
	dependentRef, err := s.codes.DependentRef()
	if err != nil {
		return CreatePairingResponse{}, fmt.Errorf("generate dependent ref: %w", err)
	}

	now := s.nowFn()
	event := s.buildEvent(eventTypeCredentialIssued, caregiverID.String(), map[string]any{
		"caregiver_id":    caregiverID,
		"community_code":  communityCode,
		"short_code_hash": shortCodeHash,
		"issued_at":       now,
	})

	pairing, credential, err := s.pairings.CreateWithCredentialTx(ctx, ports.CreatePairingTxParams{
		CaregiverID:   caregiverID,
		DependentRef:  dependentRef,
		CommunityCode: communityCode,
		Contacts:      contacts,
		ShortCodeHash: shortCodeHash,
		LinkTokenHash: s.hasher.HashLinkToken(linkToken),
		CredentialTTL: s.cfg.CredentialTTL,
		PairingTTL:    pairingTTL,
		CreatedAt:     now,
	}, event)
	if err != nil {
		return CreatePairingResponse{}, err
	}

	appLogger().InfoContext(ctx, "pairing credential issued",
		"operation", "create_pairing",
		"outcome", "success",
		"pairing_id", pairing.PairingID,
		"community_code", communityCode,
		"expires_at", credential.ExpiresAt,
	)

	return CreatePairingResponse{
		PairingID:    pairing.PairingID,
		DependentRef: pairing.DependentRef,
		ShortCode:    shortCode,
		LinkToken:    linkToken,
		ExpiresAt:    credential.ExpiresAt,
	}, nil
}

// generateUniqueShortCode retries against the live hash space a bounded number
// of times. Exhausting the budget is reported as ErrIssuanceCollision, never
// retried indefinitely.
func (s *Service) generateUniqueShortCode(ctx context.Context) (string, string, error) {
	for attempt := 0; attempt < s.cfg.IssuanceRetries; attempt++ {
		code, err := s.codes.ShortCode()
		if err != nil {
			return "", "", fmt.Errorf("generate short code: %w", err)
		}
		hash := s.hasher.HashShortCode(code)
		exists, err := s.credentials.HashExists(ctx, hash, s.nowFn())
		if err != nil {
			return "", "", err
		}
		if !exists {
			return code, hash, nil
		}
	}
	return "", "", domain.ErrIssuanceCollision
}

// RevokePairing is idempotent: revoking an already revoked pairing is a no-op.
// Only the owning caregiver may revoke.
func (s *Service) RevokePairing(ctx context.Context, pairingID, actingCaregiverID uuid.UUID) error {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return err
	}
	if pairing.CaregiverID != actingCaregiverID {
		return domain.ErrUnauthorized
	}
	if pairing.Status == domain.PairingRevoked {
		return nil
	}
	if !domain.CanTransitionPairing(pairing.Status, domain.PairingRevoked) {
		return fmt.Errorf("%w: pairing %s cannot be revoked from %s", domain.ErrConflict, pairingID, pairing.Status)
	}

	now := s.nowFn()
	changed, err := s.pairings.Revoke(ctx, pairingID, now)
	if err != nil {
		return err
	}
	if changed {
		s.emitEvent(ctx, eventTypePairingRevoked, pairingID.String(), map[string]any{
			"pairing_id":   pairingID,
			"caregiver_id": actingCaregiverID,
			"revoked_at":   now,
		})
	}
	return nil
}

// GetPairingDetail is the authenticated caregiver view. It is the only place
// precise credential state (issued/expired/redeemed) is exposed; the public
// redemption path collapses those distinctions.
func (s *Service) GetPairingDetail(ctx context.Context, pairingID, actingCaregiverID uuid.UUID) (PairingDetail, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return PairingDetail{}, err
	}
	if pairing.CaregiverID != actingCaregiverID {
		return PairingDetail{}, domain.ErrUnauthorized
	}

	detail := PairingDetail{Pairing: pairing}

	if contacts, err := s.pairings.ListContacts(ctx, pairingID); err == nil {
		detail.Contacts = contacts
	}
	if credential, err := s.credentials.GetByPairingID(ctx, pairingID); err == nil {
		status := credential.Status
		if status == domain.CredentialIssued && credential.Expired(s.nowFn()) {
			status = domain.CredentialExpired
		}
		detail.CredentialStatus = status
		expiry := credential.ExpiresAt
		detail.CredentialExpiry = &expiry
	}

	today := s.localDate(s.nowFn())
	if status, err := s.daily.Get(ctx, pairingID, today); err == nil {
		view := toDailyView(status)
		detail.Today = &view
	}
	if series, err := s.daily.ListRecent(ctx, pairingID, s.cfg.RecentSeriesDays, today); err == nil {
		detail.RecentSeries = series
	}
	if open, err := s.episodes.ListOpenByPairing(ctx, pairingID); err == nil {
		detail.OpenEpisodes = open
	}
	return detail, nil
}

// ListPairings returns the caregiver's pairings, newest first.
func (s *Service) ListPairings(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]domain.Pairing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.pairings.ListByCaregiver(ctx, caregiverID, limit, offset)
}

// ExpirePendingCredentials marks issued credentials past expiry. Redeemed
// credentials are untouched; the conditional update in the repository only
// matches status=issued rows.
func (s *Service) ExpirePendingCredentials(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.credentials.ExpireIssued(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		appLogger().InfoContext(ctx, "expired pending credentials",
			"operation", "expire_pending_credentials",
			"outcome", "success",
			"expired_count", n,
		)
	}
	return n, nil
}

// ExpirePairings applies the optional pairing expiry set at creation time.
func (s *Service) ExpirePairings(ctx context.Context, now time.Time) (int64, error) {
	return s.pairings.ExpireOverdue(ctx, now)
}

// PairingSnapshot is the trusted internal view used by sibling services over
// gRPC. It skips the caregiver ownership check; callers are inside the mesh.
func (s *Service) PairingSnapshot(ctx context.Context, pairingID uuid.UUID) (domain.Pairing, *DailyStatusView, error) {
	pairing, err := s.pairings.GetByID(ctx, pairingID)
	if err != nil {
		return domain.Pairing{}, nil, err
	}
	today := s.localDate(s.nowFn())
	if status, err := s.daily.Get(ctx, pairingID, today); err == nil {
		view := toDailyView(status)
		return pairing, &view, nil
	}
	return pairing, nil, nil
}

func toDailyView(status domain.DailyStatus) DailyStatusView {
	return DailyStatusView{
		PairingID:   status.PairingID,
		StatusDate:  status.StatusDate,
		State:       status.State,
		ConfirmedAt: status.ConfirmedAt,
		HelpFlag:    status.HelpFlag,
	}
}
