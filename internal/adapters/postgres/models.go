package postgres

import (
	"time"

	"github.com/google/uuid"
)

type pairingModel struct {
	PairingID     uuid.UUID  `gorm:"column:pairing_id;type:uuid;primaryKey"`
	CaregiverID   uuid.UUID  `gorm:"column:caregiver_id"`
	DependentRef  string     `gorm:"column:dependent_ref"`
	CommunityCode string     `gorm:"column:community_code"`
	Status        string     `gorm:"column:status"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	ActivatedAt   *time.Time `gorm:"column:activated_at"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	RevokedAt     *time.Time `gorm:"column:revoked_at"`
}

func (pairingModel) TableName() string { return "pairings" }

type credentialModel struct {
	CredentialID  uuid.UUID  `gorm:"column:credential_id;type:uuid;primaryKey"`
	PairingID     uuid.UUID  `gorm:"column:pairing_id"`
	ShortCodeHash string     `gorm:"column:short_code_hash"`
	LinkTokenHash string     `gorm:"column:link_token_hash"`
	CommunityCode string     `gorm:"column:community_code"`
	Status        string     `gorm:"column:status"`
	ExpiresAt     time.Time  `gorm:"column:expires_at"`
	RedeemedAt    *time.Time `gorm:"column:redeemed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (credentialModel) TableName() string { return "pairing_credentials" }

type contactModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	PairingID  uuid.UUID `gorm:"column:pairing_id"`
	Position   int       `gorm:"column:position"`
	ContactRef string    `gorm:"column:contact_ref"`
	Label      string    `gorm:"column:label"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (contactModel) TableName() string { return "pairing_contacts" }

type dailyStatusModel struct {
	StatusID         uuid.UUID  `gorm:"column:status_id;type:uuid;primaryKey"`
	PairingID        uuid.UUID  `gorm:"column:pairing_id"`
	StatusDate       string     `gorm:"column:status_date"`
	CommunityCode    string     `gorm:"column:community_code"`
	State            string     `gorm:"column:state"`
	ConfirmedAt      *time.Time `gorm:"column:confirmed_at"`
	HelpFlag         bool       `gorm:"column:help_flag"`
	ActionsDoneCount int        `gorm:"column:actions_done_count"`
	CaregiverActions string     `gorm:"column:caregiver_actions;type:jsonb"`
	CaregiverNote    string     `gorm:"column:caregiver_note"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (dailyStatusModel) TableName() string { return "daily_status" }

type episodeModel struct {
	EpisodeID         uuid.UUID  `gorm:"column:episode_id;type:uuid;primaryKey"`
	PairingID         uuid.UUID  `gorm:"column:pairing_id"`
	StatusDate        string     `gorm:"column:status_date"`
	Stage             string     `gorm:"column:stage"`
	ContactIndex      int        `gorm:"column:contact_index"`
	Reason            string     `gorm:"column:reason"`
	StartedAt         time.Time  `gorm:"column:started_at"`
	PrimaryNotifiedAt *time.Time `gorm:"column:primary_notified_at"`
	BackupNotifiedAt  *time.Time `gorm:"column:backup_notified_at"`
	ExhaustedAt       *time.Time `gorm:"column:exhausted_at"`
	ResolvedAt        *time.Time `gorm:"column:resolved_at"`
	Resolution        string     `gorm:"column:resolution"`
}

func (episodeModel) TableName() string { return "escalation_episodes" }

type debriefModel struct {
	DebriefID    uuid.UUID  `gorm:"column:debrief_id;type:uuid;primaryKey"`
	EpisodeID    uuid.UUID  `gorm:"column:episode_id"`
	PairingID    uuid.UUID  `gorm:"column:pairing_id"`
	Outcome      string     `gorm:"column:outcome"`
	Difficulty   string     `gorm:"column:difficulty"`
	Feedback     string     `gorm:"column:feedback"`
	SupersedesID *uuid.UUID `gorm:"column:supersedes_id"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (debriefModel) TableName() string { return "debriefs" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "pairing_outbox" }
