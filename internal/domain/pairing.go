package domain

import (
	"time"

	"github.com/google/uuid"
)

// PairingStatus is the closed lifecycle of a caregiver/dependent binding.
type PairingStatus string

const (
	PairingPending PairingStatus = "pending"
	PairingActive  PairingStatus = "active"
	PairingExpired PairingStatus = "expired"
	PairingRevoked PairingStatus = "revoked"
)

// pairingTransitions is the only source of truth for pairing state changes.
// Anything not listed here is rejected with ErrConflict.
var pairingTransitions = map[PairingStatus][]PairingStatus{
	PairingPending: {PairingActive, PairingExpired, PairingRevoked},
	PairingActive:  {PairingExpired, PairingRevoked},
}

// CanTransitionPairing reports whether from -> to is an allowed pairing move.
func CanTransitionPairing(from, to PairingStatus) bool {
	for _, next := range pairingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Pairing binds a caregiver to a dependent identified only by an anonymized
// code. It carries no personal data about the dependent.
type Pairing struct {
	PairingID     uuid.UUID
	CaregiverID   uuid.UUID
	DependentRef  string
	CommunityCode string
	Status        PairingStatus
	CreatedAt     time.Time
	ActivatedAt   *time.Time
	ExpiresAt     *time.Time
	RevokedAt     *time.Time
}

// CredentialStatus is the closed lifecycle of a single-use issuance artifact.
type CredentialStatus string

const (
	CredentialIssued   CredentialStatus = "issued"
	CredentialRedeemed CredentialStatus = "redeemed"
	CredentialExpired  CredentialStatus = "expired"
)

// Credential is the single-use artifact that activates a Pairing. Only the
// keyed hashes of its two secrets are ever stored; RedeemedAt moves from nil
// to a value exactly once via a conditional update in the credential repository.
type Credential struct {
	CredentialID  uuid.UUID
	PairingID     uuid.UUID
	ShortCodeHash string
	LinkTokenHash string
	CommunityCode string
	Status        CredentialStatus
	ExpiresAt     time.Time
	RedeemedAt    *time.Time
	CreatedAt     time.Time
}

// Expired reports whether the credential is past its validity window at now.
func (c Credential) Expired(now time.Time) bool {
	return c.Status == CredentialExpired || now.After(c.ExpiresAt)
}

// Contact is one entry in a pairing's ordered escalation chain. Position 0 is
// the primary contact; everything after it is a backup.
type Contact struct {
	PairingID  uuid.UUID
	Position   int
	ContactRef string
	Label      string
}
