package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carerelay/carerelay/internal/domain"
)

// Redeem validates a presented secret and consumes the credential exactly
// once. The attempt guard is consulted before any storage lookup so a locked
// key costs O(1) regardless of database load; every validation failure is
// recorded into the guard before the error returns to the caller.
func (s *Service) Redeem(ctx context.Context, req RedeemRequest) (RedeemResponse, error) {
	shortCode := strings.TrimSpace(req.ShortCode)
	linkToken := strings.TrimSpace(req.LinkToken)
	if shortCode == "" && linkToken == "" {
		return RedeemResponse{}, fmt.Errorf("%w: a short code or link token is required", domain.ErrInvalidInput)
	}

	guardKey := s.hasher.HashIdentifier(req.ContextKey)
	now := s.nowFn()

	state, err := s.attempts.Get(ctx, guardKey)
	if err == nil && state.LockedUntil != nil && state.LockedUntil.After(now) {
		appLogger().WarnContext(ctx, "redemption refused by attempt guard",
			"operation", "redeem",
			"outcome", "blocked",
			"locked_until", state.LockedUntil,
		)
		return RedeemResponse{}, domain.ErrLockedOut
	}

	var credential domain.Credential
	var lookupErr error
	if shortCode != "" {
		credential, lookupErr = s.credentials.GetByShortCodeHash(ctx, s.hasher.HashShortCode(shortCode))
	} else {
		credential, lookupErr = s.credentials.GetByLinkTokenHash(ctx, s.hasher.HashLinkToken(linkToken))
	}
	if lookupErr != nil {
		if errors.Is(lookupErr, domain.ErrNotFound) {
			s.recordGuardFailure(ctx, guardKey)
			return RedeemResponse{}, domain.ErrInvalidCode
		}
		return RedeemResponse{}, lookupErr
	}

	// Expired credentials still count as failures: an attacker must not be
	// able to tell expired from absent by watching the lockout counter.
	if credential.Expired(now) {
		s.recordGuardFailure(ctx, guardKey)
		return RedeemResponse{}, domain.ErrExpiredCode
	}

	if wanted := strings.TrimSpace(req.CommunityCode); wanted != "" && wanted != credential.CommunityCode {
		s.recordGuardFailure(ctx, guardKey)
		return RedeemResponse{}, domain.ErrScopeMismatch
	}

	event := s.buildEvent(eventTypePairingRedeemed, credential.PairingID.String(), map[string]any{
		"pairing_id":      credential.PairingID,
		"credential_id":   credential.CredentialID,
		"short_code_hash": credential.ShortCodeHash,
		"redeemed_at":     now,
	})

	// The compare-and-set inside RedeemTx is the sole concurrency-correctness
	// guarantee here: everything above is advisory reads.
	pairing, err := s.credentials.RedeemTx(ctx, credential.CredentialID, now, event)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRedeemed) {
			s.recordGuardFailure(ctx, guardKey)
		}
		return RedeemResponse{}, err
	}

	_ = s.attempts.Clear(ctx, guardKey)

	appLogger().InfoContext(ctx, "credential redeemed",
		"operation", "redeem",
		"outcome", "success",
		"pairing_id", pairing.PairingID,
	)

	activatedAt := now
	if pairing.ActivatedAt != nil {
		activatedAt = *pairing.ActivatedAt
	}
	return RedeemResponse{
		PairingID:    pairing.PairingID,
		DependentRef: pairing.DependentRef,
		Status:       pairing.Status,
		ActivatedAt:  activatedAt,
	}, nil
}

// recordGuardFailure bumps the attempt counter. Failure accounting never
// depends on the caller retrying, so errors here are logged and swallowed.
func (s *Service) recordGuardFailure(ctx context.Context, guardKey string) {
	now := s.nowFn()
	state, err := s.attempts.RecordFailure(ctx, guardKey, now, s.cfg.FailedThreshold, s.cfg.AttemptWindow, s.cfg.LockoutDuration)
	if err != nil {
		appLogger().ErrorContext(ctx, "attempt guard update failed",
			"operation", "record_guard_failure",
			"outcome", "failure",
			"error", err,
		)
		return
	}
	if state.LockedUntil != nil && state.LockedUntil.After(now) {
		appLogger().WarnContext(ctx, "attempt guard lockout triggered",
			"operation", "record_guard_failure",
			"outcome", "blocked",
			"failed_count", state.FailedCount,
			"locked_until", state.LockedUntil,
		)
		s.emitEvent(ctx, eventTypeLockoutTriggered, guardKey, map[string]any{
			"key_hash":     guardKey,
			"failed_count": state.FailedCount,
			"locked_until": state.LockedUntil,
		})
	}
}
