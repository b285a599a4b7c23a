package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyState is the per-day confirmation state of a pairing. States only move
// forward; the day rollover creates a fresh row instead of resetting one.
type DailyState string

const (
	DailyUnconfirmed   DailyState = "unconfirmed"
	DailyConfirmed     DailyState = "confirmed"
	DailyHelpRequested DailyState = "help-requested"
	DailyEscalated     DailyState = "escalated"
)

// dailyTransitions lists the allowed forward moves. Confirmed and
// help-requested are sibling terminal states for the day: a move between them
// is permitted (last writer wins) but callers log it as an ambiguity.
// Escalated is reached only from unconfirmed (missed deadline) and is final.
var dailyTransitions = map[DailyState][]DailyState{
	DailyUnconfirmed:   {DailyConfirmed, DailyHelpRequested, DailyEscalated},
	DailyConfirmed:     {DailyHelpRequested},
	DailyHelpRequested: {DailyConfirmed},
}

// CanTransitionDaily reports whether from -> to is an allowed daily move.
func CanTransitionDaily(from, to DailyState) bool {
	for _, next := range dailyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsSiblingOverwrite reports whether from -> to is the confirmed/help-requested
// ambiguity that must be logged rather than hidden.
func IsSiblingOverwrite(from, to DailyState) bool {
	return (from == DailyConfirmed && to == DailyHelpRequested) ||
		(from == DailyHelpRequested && to == DailyConfirmed)
}

// DailyStatus is the single row per (pairing, calendar date).
type DailyStatus struct {
	StatusID         uuid.UUID
	PairingID        uuid.UUID
	StatusDate       string // ISO calendar date in the service-local day, e.g. "2026-07-14"
	CommunityCode    string
	State            DailyState
	ConfirmedAt      *time.Time
	HelpFlag         bool
	ActionsDoneCount int
	CaregiverActions []string
	CaregiverNote    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
