package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
service:
  id: settlement-test
  http_port: 18080
dependencies:
  postgres_url: postgres://file-host/settlement
settlement:
  platform_fee_percent: 12
  auto_release_days: 7
  min_withdrawal_cents: 5000
  currency: USD
  sweep_interval_seconds: 30
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DB_URL", "postgres://env-host/settlement")
	t.Setenv("PLATFORM_FEE_PERCENT", "15")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceID != "settlement-test" || cfg.HTTPPort != 18080 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://env-host/settlement" {
		t.Fatalf("env must win over file, got %s", cfg.DatabaseURL)
	}
	if cfg.PlatformFeePercent != 15 {
		t.Fatalf("fee = %d, want env override 15", cfg.PlatformFeePercent)
	}
	if cfg.AutoReleaseDays != 7 || cfg.MinWithdrawalCents != 5000 || cfg.Currency != "USD" {
		t.Fatalf("settlement section not applied: %+v", cfg)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("sweep interval = %s, want 30s", cfg.SweepInterval)
	}
	if cfg.GRPCPort != 9090 || cfg.SweepBatchSize != 100 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://env-host/settlement")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.PlatformFeePercent != 10 || cfg.AutoReleaseDays != 14 || cfg.Currency != "KES" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("POSTGRES_URL", "")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error without a database url")
	}
}

func TestLoadConfigRejectsOutOfRangeFee(t *testing.T) {
	t.Setenv("DB_URL", "postgres://env-host/settlement")
	t.Setenv("PLATFORM_FEE_PERCENT", "101")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for fee above 100")
	}
}
