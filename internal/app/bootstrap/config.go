package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the settlement engine.
// It merges file defaults and environment overrides to support both local and
// deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	MaxDBConns  int32

	PlatformFeePercent      int
	AutoReleaseDays         int
	MinWithdrawalCents      int64
	DefaultRevisionsAllowed int
	Currency                string

	SweepInterval  time.Duration
	SweepBatchSize int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
	} `yaml:"dependencies"`
	Settlement struct {
		PlatformFeePercent      int    `yaml:"platform_fee_percent"`
		AutoReleaseDays         int    `yaml:"auto_release_days"`
		MinWithdrawalCents      int64  `yaml:"min_withdrawal_cents"`
		DefaultRevisionsAllowed int    `yaml:"default_revisions_allowed"`
		Currency                string `yaml:"currency"`
		SweepIntervalSeconds    int    `yaml:"sweep_interval_seconds"`
		SweepBatchSize          int    `yaml:"sweep_batch_size"`
	} `yaml:"settlement"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:               "settlement-engine",
		HTTPPort:                8080,
		GRPCPort:                9090,
		MaxDBConns:              20,
		PlatformFeePercent:      10,
		AutoReleaseDays:         14,
		MinWithdrawalCents:      10000,
		DefaultRevisionsAllowed: 2,
		Currency:                "KES",
		SweepInterval:           time.Minute,
		SweepBatchSize:          100,
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
		if f.Settlement.PlatformFeePercent > 0 {
			cfg.PlatformFeePercent = f.Settlement.PlatformFeePercent
		}
		if f.Settlement.AutoReleaseDays > 0 {
			cfg.AutoReleaseDays = f.Settlement.AutoReleaseDays
		}
		if f.Settlement.MinWithdrawalCents > 0 {
			cfg.MinWithdrawalCents = f.Settlement.MinWithdrawalCents
		}
		if f.Settlement.DefaultRevisionsAllowed > 0 {
			cfg.DefaultRevisionsAllowed = f.Settlement.DefaultRevisionsAllowed
		}
		if f.Settlement.Currency != "" {
			cfg.Currency = f.Settlement.Currency
		}
		if f.Settlement.SweepIntervalSeconds > 0 {
			cfg.SweepInterval = time.Duration(f.Settlement.SweepIntervalSeconds) * time.Second
		}
		if f.Settlement.SweepBatchSize > 0 {
			cfg.SweepBatchSize = f.Settlement.SweepBatchSize
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.PlatformFeePercent = envInt("PLATFORM_FEE_PERCENT", cfg.PlatformFeePercent)
	cfg.AutoReleaseDays = envInt("ESCROW_AUTO_RELEASE_DAYS", cfg.AutoReleaseDays)
	cfg.MinWithdrawalCents = int64(envInt("MIN_WITHDRAWAL_AMOUNT_CENTS", int(cfg.MinWithdrawalCents)))
	cfg.DefaultRevisionsAllowed = envInt("DEFAULT_REVISIONS_ALLOWED", cfg.DefaultRevisionsAllowed)
	cfg.Currency = envOrDefault("CURRENCY", cfg.Currency)
	cfg.SweepInterval = time.Duration(envInt("SWEEP_INTERVAL_SECONDS", int(cfg.SweepInterval.Seconds()))) * time.Second
	cfg.SweepBatchSize = envInt("SWEEP_BATCH_SIZE", cfg.SweepBatchSize)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.PlatformFeePercent < 0 || cfg.PlatformFeePercent > 100 {
		return Config{}, fmt.Errorf("platform fee percent out of range: %d", cfg.PlatformFeePercent)
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

func envInt(name string, fallback int) int {
	if value := os.Getenv(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
