package postgres

import (
	"github.com/carerelay/carerelay/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Pairings    ports.PairingRepository
	Credentials ports.CredentialRepository
	Daily       ports.DailyStatusRepository
	Episodes    ports.EpisodeRepository
	Debriefs    ports.DebriefRepository
	Outbox      ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Pairings:    &pairingRepository{db: db},
		Credentials: &credentialRepository{db: db},
		Daily:       &dailyStatusRepository{db: db},
		Episodes:    &episodeRepository{db: db},
		Debriefs:    &debriefRepository{db: db},
		Outbox:      &outboxRepository{db: db},
	}
}
