package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  host: 127.0.0.1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Load(path)
	if cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("expected host from file, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Worker.RetentionMinutes != 60 {
		t.Fatalf("expected 60 minute retention, got %d", cfg.Worker.RetentionMinutes)
	}
	if cfg.Enrichment.MaxAttempts != 3 || cfg.Enrichment.TimeoutMs != 5000 {
		t.Fatalf("expected 3 attempts / 5000ms, got %d / %d", cfg.Enrichment.MaxAttempts, cfg.Enrichment.TimeoutMs)
	}
	if cfg.Enrichment.RetryDelayMs != 0 {
		t.Fatalf("expected immediate retry by default, got %dms", cfg.Enrichment.RetryDelayMs)
	}
	if cfg.Catalog.DefaultBranchID != 400 {
		t.Fatalf("expected default branch 400, got %d", cfg.Catalog.DefaultBranchID)
	}
}

func TestLoad_KeepsExplicitValues(t *testing.T) {
	raw := `
enrichment:
  baseURL: http://enrich.internal:9000
  maxAttempts: 5
  timeoutMs: 250
worker:
  retentionMinutes: 5
validation:
  unapprovedEmailDomains: [mailinator, tempmail]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Load(path)
	if cfg.Enrichment.BaseURL != "http://enrich.internal:9000" {
		t.Fatalf("unexpected baseURL %q", cfg.Enrichment.BaseURL)
	}
	if cfg.Enrichment.MaxAttempts != 5 || cfg.Enrichment.TimeoutMs != 250 {
		t.Fatalf("unexpected retry policy %+v", cfg.Enrichment)
	}
	if cfg.Enrichment.Endpoint != "/api/enrich" {
		t.Fatalf("expected default endpoint, got %q", cfg.Enrichment.Endpoint)
	}
	if cfg.Worker.RetentionMinutes != 5 {
		t.Fatalf("expected 5 minute retention, got %d", cfg.Worker.RetentionMinutes)
	}
	if len(cfg.Validation.UnapprovedEmailDomains) != 2 {
		t.Fatalf("expected 2 unapproved domains, got %v", cfg.Validation.UnapprovedEmailDomains)
	}
}
