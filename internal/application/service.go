package application

import (
	"context"
	"time"

	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

type Service struct {
	cfg         Config
	pairings    ports.PairingRepository
	credentials ports.CredentialRepository
	daily       ports.DailyStatusRepository
	episodes    ports.EpisodeRepository
	debriefs    ports.DebriefRepository
	outbox      ports.OutboxRepository
	attempts    ports.AttemptStore
	hasher      ports.CredentialHasher
	codes       ports.CodeGenerator
	verifier    ports.TokenVerifier
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Pairings    ports.PairingRepository
	Credentials ports.CredentialRepository
	Daily       ports.DailyStatusRepository
	Episodes    ports.EpisodeRepository
	Debriefs    ports.DebriefRepository
	Outbox      ports.OutboxRepository
	Attempts    ports.AttemptStore
	Hasher      ports.CredentialHasher
	Codes       ports.CodeGenerator
	Verifier    ports.TokenVerifier
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.IssuanceRetries <= 0 {
		cfg.IssuanceRetries = 20
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 500
	}
	if cfg.RecentSeriesDays <= 0 {
		cfg.RecentSeriesDays = 7
	}
	return &Service{
		cfg:         cfg,
		pairings:    deps.Pairings,
		credentials: deps.Credentials,
		daily:       deps.Daily,
		episodes:    deps.Episodes,
		debriefs:    deps.Debriefs,
		outbox:      deps.Outbox,
		attempts:    deps.Attempts,
		hasher:      deps.Hasher,
		codes:       deps.Codes,
		verifier:    deps.Verifier,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// ValidateCaregiverToken verifies a bearer token on the authenticated surface.
// Token issuance lives with the account service; only verification happens here.
func (s *Service) ValidateCaregiverToken(_ context.Context, token string) (ports.CaregiverClaims, error) {
	claims, err := s.verifier.ParseAndValidate(token)
	if err != nil {
		return ports.CaregiverClaims{}, domain.ErrUnauthorized
	}
	if claims.ExpiresAt.Before(s.nowFn()) {
		return ports.CaregiverClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}
