package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("ORACLE_MODEL", "")
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.OracleModel != "qwen-plus" {
		t.Fatalf("OracleModel = %q, want qwen-plus", cfg.OracleModel)
	}
	if cfg.OracleTimeout != 30*time.Second {
		t.Fatalf("OracleTimeout = %v, want 30s", cfg.OracleTimeout)
	}
	if cfg.OracleMaxRetries != 2 {
		t.Fatalf("OracleMaxRetries = %d, want 2", cfg.OracleMaxRetries)
	}
	if cfg.DefaultLocale != "zh" {
		t.Fatalf("DefaultLocale = %q, want zh", cfg.DefaultLocale)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigClampsNegativeRetries(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("ORACLE_MAX_RETRIES", "-3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.OracleMaxRetries != 0 {
		t.Fatalf("OracleMaxRetries = %d, want 0", cfg.OracleMaxRetries)
	}
}
