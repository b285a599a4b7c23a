package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the pairing service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool

	CredentialPepper string

	CredentialTTL    time.Duration
	PairingTTL       time.Duration
	FailedThreshold  int
	AttemptWindow    time.Duration
	LockoutDuration  time.Duration
	DailyDeadline    int
	Timezone         string
	IssuanceRetries  int
	SweepBatchSize   int
	RecentSeriesDays int

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
	SweepInterval      time.Duration
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Pairing struct {
		CredentialTTLHours  int    `yaml:"credential_ttl_hours"`
		PairingTTLDays      int    `yaml:"pairing_ttl_days"`
		FailedThreshold     int    `yaml:"failed_threshold"`
		AttemptWindowMins   int    `yaml:"attempt_window_minutes"`
		LockoutMins         int    `yaml:"lockout_minutes"`
		DailyDeadlineHour   int    `yaml:"daily_deadline_hour"`
		Timezone            string `yaml:"timezone"`
		CredentialPepper    string `yaml:"credential_pepper"`
		RecentSeriesDays    int    `yaml:"recent_series_days"`
		SweepIntervalMins   int    `yaml:"sweep_interval_minutes"`
	} `yaml:"pairing"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "carerelay-pairing",
		HTTPPort:           8080,
		GRPCPort:           9090,
		JWTKeyID:           "carerelay-key-1",
		AllowEphemeralJWT:  true,
		CredentialTTL:      72 * time.Hour,
		FailedThreshold:    5,
		AttemptWindow:      30 * time.Minute,
		LockoutDuration:    30 * time.Minute,
		DailyDeadline:      20,
		Timezone:           "UTC",
		IssuanceRetries:    20,
		SweepBatchSize:     500,
		RecentSeriesDays:   7,
		MaxDBConns:         20,
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
		OutboxClaimTTL:     30 * time.Second,
		OutboxMaxRetries:   5,
		SweepInterval:      5 * time.Minute,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Pairing.CredentialTTLHours > 0 {
			cfg.CredentialTTL = time.Duration(f.Pairing.CredentialTTLHours) * time.Hour
		}
		if f.Pairing.PairingTTLDays > 0 {
			cfg.PairingTTL = time.Duration(f.Pairing.PairingTTLDays) * 24 * time.Hour
		}
		if f.Pairing.FailedThreshold > 0 {
			cfg.FailedThreshold = f.Pairing.FailedThreshold
		}
		if f.Pairing.AttemptWindowMins > 0 {
			cfg.AttemptWindow = time.Duration(f.Pairing.AttemptWindowMins) * time.Minute
		}
		if f.Pairing.LockoutMins > 0 {
			cfg.LockoutDuration = time.Duration(f.Pairing.LockoutMins) * time.Minute
		}
		if f.Pairing.DailyDeadlineHour > 0 {
			cfg.DailyDeadline = f.Pairing.DailyDeadlineHour
		}
		if f.Pairing.Timezone != "" {
			cfg.Timezone = f.Pairing.Timezone
		}
		if f.Pairing.CredentialPepper != "" {
			cfg.CredentialPepper = f.Pairing.CredentialPepper
		}
		if f.Pairing.RecentSeriesDays > 0 {
			cfg.RecentSeriesDays = f.Pairing.RecentSeriesDays
		}
		if f.Pairing.SweepIntervalMins > 0 {
			cfg.SweepInterval = time.Duration(f.Pairing.SweepIntervalMins) * time.Minute
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.CredentialPepper = envOrDefault("CREDENTIAL_PEPPER", cfg.CredentialPepper)
	cfg.Timezone = envOrDefault("PAIRING_TIMEZONE", cfg.Timezone)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.FailedThreshold = envInt("FAILED_ATTEMPT_THRESHOLD", cfg.FailedThreshold)
	cfg.DailyDeadline = envInt("DAILY_DEADLINE_HOUR", cfg.DailyDeadline)
	cfg.IssuanceRetries = envInt("ISSUANCE_RETRIES", cfg.IssuanceRetries)
	cfg.SweepBatchSize = envInt("SWEEP_BATCH_SIZE", cfg.SweepBatchSize)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.CredentialTTL = time.Duration(envInt("CREDENTIAL_TTL_HOURS", int(cfg.CredentialTTL.Hours()))) * time.Hour
	cfg.AttemptWindow = time.Duration(envInt("ATTEMPT_WINDOW_MINUTES", int(cfg.AttemptWindow.Minutes()))) * time.Minute
	cfg.LockoutDuration = time.Duration(envInt("LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)
	cfg.SweepInterval = time.Duration(envInt("SWEEP_INTERVAL_MINUTES", int(cfg.SweepInterval.Minutes()))) * time.Minute

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.CredentialPepper == "" {
		return Config{}, fmt.Errorf("missing CREDENTIAL_PEPPER")
	}
	if cfg.JWTPublicKeyPEM == "" && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PUBLIC_KEY_PEM")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
