package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid: %s", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %s", err)
	}
	if cfg.Cache.MaxSize != Default().Cache.MaxSize {
		t.Fatalf("expected defaults, got %+v", cfg.Cache)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"cache": {"maxSize": 10, "forwardTTL": "30s"},
		"resolvers": {"sns": {"enabled": false}},
		"priority": ["custom", "ens"],
		"expiration": {"thresholds": ["48h", "2h"]}
	}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.Cache.MaxSize != 10 || cfg.Cache.ForwardTTL.Std() != 30*time.Second {
		t.Fatalf("cache not overlaid: %+v", cfg.Cache)
	}
	if cfg.Cache.RecordsTTL.Std() != 10*time.Minute {
		t.Fatalf("fields absent from the file should keep defaults, got %s", cfg.Cache.RecordsTTL.Std())
	}
	if cfg.Resolvers.SNS.Enabled {
		t.Fatalf("sns should be disabled")
	}
	if !cfg.Resolvers.ENS.Enabled {
		t.Fatalf("ens should stay enabled")
	}
	if len(cfg.Priority) != 2 || cfg.Priority[0] != "custom" {
		t.Fatalf("unexpected priority %v", cfg.Priority)
	}
	got := cfg.Expiration.ThresholdDurations()
	if len(got) != 2 || got[0] != 48*time.Hour || got[1] != 2*time.Hour {
		t.Fatalf("unexpected thresholds %v", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("UNS_CACHE_MAX_SIZE", "42")
	t.Setenv("UNS_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("DATABASE_URL", "postgres://uns@localhost/uns")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.Cache.MaxSize != 42 || cfg.Server.ListenAddr != "127.0.0.1:9000" || cfg.Postgres.DatabaseURL != "postgres://uns@localhost/uns" {
		t.Fatalf("env not applied: %+v %+v %+v", cfg.Cache, cfg.Server, cfg.Postgres)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("UNS_CACHE_MAX_SIZE", "not-a-number")
	if _, err := Load(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatalf("expected error for bad env value")
	}

	file := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(file, []byte(`{"cache": {"forwardTTL": 5}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UNS_CACHE_MAX_SIZE", "")
	if _, err := Load(file); err == nil {
		t.Fatalf("expected error for numeric duration")
	}
}

func TestCoinTypeFlag(t *testing.T) {
	defer func(old int64) { CoinType = old }(CoinType)
	CoinType = -1
	if CoinTypeFlag() != nil {
		t.Fatalf("unset flag should be nil")
	}
	CoinType = 501
	if ct := CoinTypeFlag(); ct == nil || *ct != 501 {
		t.Fatalf("expected 501")
	}
}
