package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
upstream:
  base_url: http://localhost:9000
scan:
  symbols: ["600000.SH"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Fatalf("default backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.ExpireAfter != 24*time.Hour {
		t.Fatalf("default expiry = %v", cfg.Cache.ExpireAfter)
	}
	if cfg.Upstream.Retry.MaxRetries != 3 {
		t.Fatalf("default retries = %d", cfg.Upstream.Retry.MaxRetries)
	}
	if cfg.Upstream.Retry.BackoffMin != time.Second || cfg.Upstream.Retry.BackoffMax != 3*time.Second {
		t.Fatalf("default backoff window = [%v, %v]",
			cfg.Upstream.Retry.BackoffMin, cfg.Upstream.Retry.BackoffMax)
	}
	if cfg.Scan.Workers != 8 {
		t.Fatalf("default workers = %d", cfg.Scan.Workers)
	}
	if cfg.Scan.LookbackDays != 365 {
		t.Fatalf("default lookback = %d", cfg.Scan.LookbackDays)
	}
}

func TestLoadRejectsMissingUniverse(t *testing.T) {
	body := `
environment: test
upstream:
  base_url: http://localhost:9000
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error without symbols or index")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := minimalYAML + `
cache:
  backend: memcached
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for unknown backend")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://override:9001")
	t.Setenv("SYMBOLS", "000001.SZ,300750.SZ")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://override:9001" {
		t.Fatalf("base url override missing, got %q", cfg.Upstream.BaseURL)
	}
	if len(cfg.Scan.Symbols) != 2 || cfg.Scan.Symbols[1] != "300750.SZ" {
		t.Fatalf("symbols override missing, got %v", cfg.Scan.Symbols)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Fatalf("cache override missing, got %q %q", cfg.Cache.Backend, cfg.Cache.Redis.Addr)
	}
}
