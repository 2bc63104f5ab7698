package infra

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "")
	t.Setenv("FETCH_CONCURRENCY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "5000")
	}
	if cfg.CacheTTL != 600*time.Second {
		t.Fatalf("CacheTTL mismatch: got %s", cfg.CacheTTL)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Fatalf("FetchTimeout mismatch: got %s", cfg.FetchTimeout)
	}
	if cfg.FetchConcurrency != 1 {
		t.Fatalf("FetchConcurrency mismatch: got %d", cfg.FetchConcurrency)
	}
	if len(cfg.SessionSecret) != 48 {
		t.Fatalf("expected generated session secret, got %q", cfg.SessionSecret)
	}
}

func TestLoadConfigRequiresAdminPassword(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without ADMIN_PASSWORD")
	}
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("FETCH_CONCURRENCY", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if diff := cmp.Diff(want, cfg.CORSAllowedOrigins); diff != "" {
		t.Fatalf("CORSAllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.FetchConcurrency != 1 {
		t.Fatalf("FetchConcurrency should clamp to 1, got %d", cfg.FetchConcurrency)
	}
}

func TestLoadToolConfigWithoutAdminPassword(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("DATA_DIR", "/var/lib/o1sub")

	cfg, err := LoadToolConfig()
	if err != nil {
		t.Fatalf("LoadToolConfig returned error: %v", err)
	}
	if cfg.DataDir != "/var/lib/o1sub" {
		t.Fatalf("DataDir mismatch: got %q", cfg.DataDir)
	}
}

func TestLoadConfigWarmIntervalDefaultsToHalfTTL(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("WARM_INTERVAL_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.WarmInterval != time.Minute {
		t.Fatalf("WarmInterval mismatch: got %s", cfg.WarmInterval)
	}
}

func TestLoadConfigTrustedProxies(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"10.0.0.0/8", "127.0.0.1"}
	if diff := cmp.Diff(want, cfg.TrustedProxies); diff != "" {
		t.Fatalf("TrustedProxies mismatch (-want +got):\n%s", diff)
	}
}
