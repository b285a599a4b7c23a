package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/domain"
)

type Config struct {
	CredentialTTL    time.Duration
	PairingTTL       time.Duration
	IssuanceRetries  int
	FailedThreshold  int
	AttemptWindow    time.Duration
	LockoutDuration  time.Duration
	DailyDeadline    int // local hour of day after which an unconfirmed day escalates
	Timezone         *time.Location
	SweepBatchSize   int
	RecentSeriesDays int
}

type CreatePairingRequest struct {
	CommunityCode string   `json:"community_code"`
	ContactRefs   []string `json:"contact_refs"`
	ContactLabels []string `json:"contact_labels"`
	PairingTTL    string   `json:"pairing_ttl,omitempty"`
}

// CreatePairingResponse is the only moment the plaintext secrets exist outside
// the caller's hands; they are never persisted or logged.
type CreatePairingResponse struct {
	PairingID    uuid.UUID `json:"pairing_id"`
	DependentRef string    `json:"dependent_ref"`
	ShortCode    string    `json:"short_code"`
	LinkToken    string    `json:"link_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RedeemRequest struct {
	ShortCode     string `json:"short_code,omitempty"`
	LinkToken     string `json:"link_token,omitempty"`
	CommunityCode string `json:"community_code,omitempty"`
	// ContextKey fingerprints the requester for the attempt guard. The HTTP
	// adapter fills it from the client address; it is hashed before use.
	ContextKey string `json:"-"`
}

type RedeemResponse struct {
	PairingID    uuid.UUID            `json:"pairing_id"`
	DependentRef string               `json:"dependent_ref"`
	Status       domain.PairingStatus `json:"status"`
	ActivatedAt  time.Time            `json:"activated_at"`
}

type ConfirmRequest struct {
	PairingID uuid.UUID
	// Date overrides the service-local today; empty means now. Used by tests
	// and by retroactive admin tooling, never by the public surface.
	Date string
}

type DailyStatusView struct {
	PairingID   uuid.UUID         `json:"pairing_id"`
	StatusDate  string            `json:"status_date"`
	State       domain.DailyState `json:"state"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty"`
	HelpFlag    bool              `json:"help_flag"`
	EpisodeID   *uuid.UUID        `json:"episode_id,omitempty"`
}

type CareActionsRequest struct {
	Actions []string `json:"actions"`
	Note    string   `json:"note"`
}

type PairingDetail struct {
	Pairing          domain.Pairing             `json:"pairing"`
	Contacts         []domain.Contact           `json:"contacts"`
	CredentialStatus domain.CredentialStatus    `json:"credential_status,omitempty"`
	CredentialExpiry *time.Time                 `json:"credential_expiry,omitempty"`
	Today            *DailyStatusView           `json:"today,omitempty"`
	RecentSeries     []domain.DailyStatus       `json:"recent_series,omitempty"`
	OpenEpisodes     []domain.EscalationEpisode `json:"open_episodes,omitempty"`
}

type AdvanceResponse struct {
	EpisodeID    uuid.UUID              `json:"episode_id"`
	Stage        domain.EscalationStage `json:"stage"`
	ContactIndex int                    `json:"contact_index"`
	NotifiedRef  string                 `json:"notified_ref,omitempty"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

type DebriefRequest struct {
	Outcome      string     `json:"outcome"`
	Difficulty   string     `json:"difficulty"`
	Feedback     string     `json:"feedback"`
	SupersedesID *uuid.UUID `json:"supersedes_id,omitempty"`
}

type DebriefResponse struct {
	DebriefID uuid.UUID `json:"debrief_id"`
	EpisodeID uuid.UUID `json:"episode_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SweepReport struct {
	ExpiredCredentials int64 `json:"expired_credentials"`
	ExpiredPairings    int64 `json:"expired_pairings"`
	Escalated          int   `json:"escalated"`
}
