package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
)

// CreatePairingTxParams captures atomic pairing+credential creation inputs.
// The pairing and its issuance credential are written in one transaction so a
// credential can never dangle without a pairing candidate.
type CreatePairingTxParams struct {
	CaregiverID   uuid.UUID
	DependentRef  string
	CommunityCode string
	Contacts      []domain.Contact
	ShortCodeHash string
	LinkTokenHash string
	CredentialTTL time.Duration
	PairingTTL    time.Duration
	CreatedAt     time.Time
}

// PairingRepository owns pairing rows. Status moves go through UpdateStatus so
// the transition table stays the single write path.
type PairingRepository interface {
	CreateWithCredentialTx(ctx context.Context, params CreatePairingTxParams, outboxEvent OutboxEvent) (domain.Pairing, domain.Credential, error)
	GetByID(ctx context.Context, pairingID uuid.UUID) (domain.Pairing, error)
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]domain.Pairing, error)
	ListActiveIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, error)
	ListContacts(ctx context.Context, pairingID uuid.UUID) ([]domain.Contact, error)
	// Revoke is idempotent: an already revoked pairing reports zero rows
	// affected without an error.
	Revoke(ctx context.Context, pairingID uuid.UUID, revokedAt time.Time) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// CredentialRepository is the only writer of redeemed_at. RedeemTx performs
// the compare-and-set that gives the subsystem its at-most-once guarantee.
type CredentialRepository interface {
	GetByShortCodeHash(ctx context.Context, hash string) (domain.Credential, error)
	GetByLinkTokenHash(ctx context.Context, hash string) (domain.Credential, error)
	GetByPairingID(ctx context.Context, pairingID uuid.UUID) (domain.Credential, error)
	HashExists(ctx context.Context, shortCodeHash string, now time.Time) (bool, error)
	// RedeemTx sets redeemed_at only where it is currently NULL and flips the
	// owning pairing pending->active in the same transaction. A zero-row
	// conditional update surfaces as domain.ErrAlreadyRedeemed.
	RedeemTx(ctx context.Context, credentialID uuid.UUID, redeemedAt time.Time, outboxEvent OutboxEvent) (domain.Pairing, error)
	ExpireIssued(ctx context.Context, now time.Time) (int64, error)
}

// DailyStatusUpsert is the create-if-absent envelope for a pairing day.
type DailyStatusUpsert struct {
	PairingID     uuid.UUID
	StatusDate    string
	CommunityCode string
	Now           time.Time
}

// DailyStatusRepository owns the one-row-per-day invariant. Transition updates
// are conditional on the current state so concurrent sweeps converge.
type DailyStatusRepository interface {
	GetOrCreate(ctx context.Context, params DailyStatusUpsert) (domain.DailyStatus, error)
	Get(ctx context.Context, pairingID uuid.UUID, statusDate string) (domain.DailyStatus, error)
	ListRecent(ctx context.Context, pairingID uuid.UUID, days int, until string) ([]domain.DailyStatus, error)
	// Transition updates state only where the row still holds fromState;
	// returns false when another writer got there first.
	Transition(ctx context.Context, statusID uuid.UUID, fromState, toState domain.DailyState, confirmedAt *time.Time, helpFlag bool, now time.Time) (bool, error)
	SetCareActions(ctx context.Context, statusID uuid.UUID, actions []string, note string, now time.Time) error
	ListUnconfirmed(ctx context.Context, statusDate string, limit int) ([]domain.DailyStatus, error)
}

// EpisodeRepository owns escalation episodes. Create is idempotent per
// (pairing, date) via the unique constraint.
type EpisodeRepository interface {
	// Create inserts the episode unless one already exists for the pairing
	// day; the existing row is returned with created=false in that case.
	Create(ctx context.Context, episode domain.EscalationEpisode) (domain.EscalationEpisode, bool, error)
	GetByID(ctx context.Context, episodeID uuid.UUID) (domain.EscalationEpisode, error)
	ListOpenByPairing(ctx context.Context, pairingID uuid.UUID) ([]domain.EscalationEpisode, error)
	AdvanceStage(ctx context.Context, episodeID uuid.UUID, stage domain.EscalationStage, contactIndex int, at time.Time) error
	// Resolve is conditional on resolved_at IS NULL; false means the episode
	// was already closed.
	Resolve(ctx context.Context, episodeID uuid.UUID, resolution string, resolvedAt time.Time) (bool, error)
}

// DebriefRepository owns immutable debrief rows. There is deliberately no
// update method.
type DebriefRepository interface {
	Create(ctx context.Context, debrief domain.Debrief) error
	GetLatestByEpisode(ctx context.Context, episodeID uuid.UUID) (domain.Debrief, error)
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of delivery specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository stores notify intents and audit events until the worker
// publishes them. Claiming uses SKIP LOCKED semantics so workers can overlap.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken string, reason string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken string, reason string, at time.Time) error
}
