package domain

import (
	"time"

	"github.com/google/uuid"
)

// EscalationStage tracks progress along the pairing's ordered contact chain.
type EscalationStage string

const (
	StageNotifyPrimary EscalationStage = "notify-primary"
	StageNotifyBackup  EscalationStage = "notify-backup"
	StageExhausted     EscalationStage = "exhausted"
)

// StageForContactIndex derives the stage from how far along the chain the
// episode has moved. contactCount is the chain length.
func StageForContactIndex(index, contactCount int) EscalationStage {
	switch {
	case index >= contactCount:
		return StageExhausted
	case index == 0:
		return StageNotifyPrimary
	default:
		return StageNotifyBackup
	}
}

// EscalationEpisode is one missed-confirmation or help case for a pairing day.
// ContactIndex points at the most recently notified contact.
type EscalationEpisode struct {
	EpisodeID         uuid.UUID
	PairingID         uuid.UUID
	StatusDate        string
	Stage             EscalationStage
	ContactIndex      int
	Reason            string // "overdue" or "help-requested"
	StartedAt         time.Time
	PrimaryNotifiedAt *time.Time
	BackupNotifiedAt  *time.Time
	ExhaustedAt       *time.Time
	ResolvedAt        *time.Time
	Resolution        string
}

// Closed reports whether the episode accepts no further advancement.
func (e EscalationEpisode) Closed() bool {
	return e.ResolvedAt != nil
}

// Debrief is the immutable after-action record closing an episode.
// Corrections are expressed as a new debrief with SupersedesID set.
type Debrief struct {
	DebriefID    uuid.UUID
	EpisodeID    uuid.UUID
	PairingID    uuid.UUID
	Outcome      string
	Difficulty   string
	Feedback     string
	SupersedesID *uuid.UUID
	CreatedAt    time.Time
}
