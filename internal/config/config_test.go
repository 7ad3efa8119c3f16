package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediavault/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndEnvFallbacks(t *testing.T) {
	t.Setenv("MEDIAVAULT_API_TOKEN", "secret-token")
	t.Setenv("MEDIAVAULT_NATS_URL", "nats://example:4222")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "mediavault", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7848" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Paths.APIToken != "secret-token" {
		t.Fatalf("expected API token from env, got %q", cfg.Paths.APIToken)
	}
	if cfg.BlobStore.URL != "nats://example:4222" {
		t.Fatalf("expected NATS URL from env, got %q", cfg.BlobStore.URL)
	}
	if cfg.Matching.HighSimilarityThreshold != 0.9 {
		t.Fatalf("unexpected high similarity threshold: %v", cfg.Matching.HighSimilarityThreshold)
	}
	if cfg.Matching.LowSimilarityThreshold != 0.7 {
		t.Fatalf("unexpected low similarity threshold: %v", cfg.Matching.LowSimilarityThreshold)
	}
	if cfg.Matching.MinKeywordMatches != 2 {
		t.Fatalf("unexpected min keyword matches: %d", cfg.Matching.MinKeywordMatches)
	}
	if cfg.Retention.MaxRecordAgeDays != 30 {
		t.Fatalf("unexpected retention days: %d", cfg.Retention.MaxRecordAgeDays)
	}
	if !strings.HasSuffix(cfg.DatabasePath(), filepath.Join("data", "catalog.db")) {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = "127.0.0.1:0"

[matching]
high_similarity_threshold = 0.95
min_keyword_matches = 3

[retention]
max_record_age_days = 7
sweep_interval_hours = 1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Matching.HighSimilarityThreshold != 0.95 {
		t.Fatalf("unexpected threshold: %v", cfg.Matching.HighSimilarityThreshold)
	}
	if cfg.Matching.MinKeywordMatches != 3 {
		t.Fatalf("unexpected keyword minimum: %d", cfg.Matching.MinKeywordMatches)
	}
	if cfg.Retention.MaxRecordAgeDays != 7 {
		t.Fatalf("unexpected retention: %d", cfg.Retention.MaxRecordAgeDays)
	}
	// Unset sections keep defaults.
	if cfg.Extractor.YtdlpBinary != "yt-dlp" {
		t.Fatalf("unexpected ytdlp binary: %q", cfg.Extractor.YtdlpBinary)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Matching.HighSimilarityThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for threshold above 1")
	}

	cfg = config.Default()
	cfg.Matching.LowSimilarityThreshold = 0.95
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when low threshold exceeds high")
	}

	cfg = config.Default()
	cfg.Matching.MinKeywordMatches = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero keyword minimum")
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
