package postgres

import (
	"encoding/json"
	"errors"

	"github.com/carerelay/carerelay/internal/domain"
	"gorm.io/gorm"
)

func toDomainPairing(row pairingModel) domain.Pairing {
	return domain.Pairing{
		PairingID:     row.PairingID,
		CaregiverID:   row.CaregiverID,
		DependentRef:  row.DependentRef,
		CommunityCode: row.CommunityCode,
		Status:        domain.PairingStatus(row.Status),
		CreatedAt:     row.CreatedAt,
		ActivatedAt:   row.ActivatedAt,
		ExpiresAt:     row.ExpiresAt,
		RevokedAt:     row.RevokedAt,
	}
}

func toDomainCredential(row credentialModel) domain.Credential {
	return domain.Credential{
		CredentialID:  row.CredentialID,
		PairingID:     row.PairingID,
		ShortCodeHash: row.ShortCodeHash,
		LinkTokenHash: row.LinkTokenHash,
		CommunityCode: row.CommunityCode,
		Status:        domain.CredentialStatus(row.Status),
		ExpiresAt:     row.ExpiresAt,
		RedeemedAt:    row.RedeemedAt,
		CreatedAt:     row.CreatedAt,
	}
}

func toDomainContact(row contactModel) domain.Contact {
	return domain.Contact{
		PairingID:  row.PairingID,
		Position:   row.Position,
		ContactRef: row.ContactRef,
		Label:      row.Label,
	}
}

func toDomainDailyStatus(row dailyStatusModel) domain.DailyStatus {
	var actions []string
	if row.CaregiverActions != "" {
		_ = json.Unmarshal([]byte(row.CaregiverActions), &actions)
	}
	return domain.DailyStatus{
		StatusID:         row.StatusID,
		PairingID:        row.PairingID,
		StatusDate:       row.StatusDate,
		CommunityCode:    row.CommunityCode,
		State:            domain.DailyState(row.State),
		ConfirmedAt:      row.ConfirmedAt,
		HelpFlag:         row.HelpFlag,
		ActionsDoneCount: row.ActionsDoneCount,
		CaregiverActions: actions,
		CaregiverNote:    row.CaregiverNote,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func toDomainEpisode(row episodeModel) domain.EscalationEpisode {
	return domain.EscalationEpisode{
		EpisodeID:         row.EpisodeID,
		PairingID:         row.PairingID,
		StatusDate:        row.StatusDate,
		Stage:             domain.EscalationStage(row.Stage),
		ContactIndex:      row.ContactIndex,
		Reason:            row.Reason,
		StartedAt:         row.StartedAt,
		PrimaryNotifiedAt: row.PrimaryNotifiedAt,
		BackupNotifiedAt:  row.BackupNotifiedAt,
		ExhaustedAt:       row.ExhaustedAt,
		ResolvedAt:        row.ResolvedAt,
		Resolution:        row.Resolution,
	}
}

func toDomainDebrief(row debriefModel) domain.Debrief {
	return domain.Debrief{
		DebriefID:    row.DebriefID,
		EpisodeID:    row.EpisodeID,
		PairingID:    row.PairingID,
		Outcome:      row.Outcome,
		Difficulty:   row.Difficulty,
		Feedback:     row.Feedback,
		SupersedesID: row.SupersedesID,
		CreatedAt:    row.CreatedAt,
	}
}

func marshalActions(actions []string) string {
	if len(actions) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
