package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "equiptrack")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "10")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg := Load()

	if cfg.Institution != "EAFC-TIC" {
		t.Fatalf("Institution = %q", cfg.Institution)
	}
	if cfg.SessionTimeout != time.Hour {
		t.Fatalf("SessionTimeout = %s, want 1h", cfg.SessionTimeout)
	}
	if cfg.ReaperInterval != time.Minute {
		t.Fatalf("ReaperInterval = %s, want 1m", cfg.ReaperInterval)
	}
	if !cfg.ReaperEnabled {
		t.Fatal("reaper must default to enabled")
	}
	if cfg.PendingScanTTL != 10*time.Minute {
		t.Fatalf("PendingScanTTL = %s, want 10m", cfg.PendingScanTTL)
	}
	if cfg.UserCacheTTL != 5*time.Minute {
		t.Fatalf("UserCacheTTL = %s, want 5m", cfg.UserCacheTTL)
	}
	if cfg.InventoryBackend != "json" {
		t.Fatalf("InventoryBackend = %q, want json", cfg.InventoryBackend)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("INSTITUTION", "HE-Vinci")
	t.Setenv("SESSION_TIMEOUT", "2h")
	t.Setenv("REAPER_ENABLED", "false")
	t.Setenv("INVENTORY_BACKEND", "mysql")

	cfg := Load()
	if cfg.Institution != "HE-Vinci" {
		t.Fatalf("Institution = %q", cfg.Institution)
	}
	if cfg.SessionTimeout != 2*time.Hour {
		t.Fatalf("SessionTimeout = %s", cfg.SessionTimeout)
	}
	if cfg.ReaperEnabled {
		t.Fatal("REAPER_ENABLED=false not honored")
	}
	if cfg.InventoryBackend != "mysql" {
		t.Fatalf("InventoryBackend = %q", cfg.InventoryBackend)
	}
}

func TestParseDurFallsBack(t *testing.T) {
	if d := parseDur("not-a-duration"); d != time.Second {
		t.Fatalf("parseDur fallback = %s, want 1s", d)
	}
	if d := parseDur("90s"); d != 90*time.Second {
		t.Fatalf("parseDur(90s) = %s", d)
	}
}
