package config_test

import (
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_MODE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Render.Queue != "renders" {
		t.Errorf("expected renders queue, got %q", cfg.Render.Queue)
	}
	if cfg.Render.MaxErrorLength != 500 {
		t.Errorf("expected 500 max error length, got %d", cfg.Render.MaxErrorLength)
	}
	if cfg.Storage.Mode != "local" || cfg.Storage.PublicBaseURL != "/static" {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("expected 1h access TTL, got %v", cfg.Auth.AccessTokenTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JOBX_CONCURRENCY", "3")
	t.Setenv("JOBX_QUEUES", "renders, priority ,")
	t.Setenv("RENDER_RELAY_AFTER", "90s")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Jobx.Concurrency != 3 {
		t.Errorf("expected concurrency 3, got %d", cfg.Jobx.Concurrency)
	}
	if len(cfg.Jobx.Queues) != 2 || cfg.Jobx.Queues[1] != "priority" {
		t.Errorf("unexpected queues: %v", cfg.Jobx.Queues)
	}
	if cfg.Render.RelayAfter != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.Render.RelayAfter)
	}
	if cfg.Storage.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Storage.PublicBaseURL)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := config.Load(); err == nil {
		t.Error("expected missing JWT_SECRET to fail")
	}

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORAGE_MODE", "s3")
	t.Setenv("S3_BUCKET", "")
	if _, err := config.Load(); err == nil {
		t.Error("expected s3 without bucket to fail")
	}
}
