package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"WEIGH_PORT", "WEIGH_METRICS_PORT", "WEIGH_ADMIN_TOKEN",
	"WEIGH_DATABASE_URL", "WEIGH_HERMES_URL", "WEIGH_STRICT",
	"WEIGH_MAX_CRITERIA", "WEIGH_BATCH_CONCURRENCY",
	"WEIGH_LOG_LEVEL", "WEIGH_LOG_FORMAT", "WEIGH_CONNECT_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Hermes.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Hermes.URL)
	}
	if cfg.Database.URL != "" {
		t.Errorf("expected empty database URL, got %s", cfg.Database.URL)
	}
	if cfg.Database.ConnectTimeout != 30*time.Second {
		t.Errorf("expected connect timeout 30s, got %s", cfg.Database.ConnectTimeout)
	}
	if cfg.Evaluation.Strict {
		t.Error("expected permissive evaluation by default")
	}
	if cfg.Evaluation.MaxCriteria != 50 {
		t.Errorf("expected max criteria 50, got %d", cfg.Evaluation.MaxCriteria)
	}
	if cfg.Evaluation.BatchConcurrency != 8 {
		t.Errorf("expected batch concurrency 8, got %d", cfg.Evaluation.BatchConcurrency)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEIGH_PORT", "9000")
	t.Setenv("WEIGH_METRICS_PORT", "9001")
	t.Setenv("WEIGH_ADMIN_TOKEN", "secret-token")
	t.Setenv("WEIGH_DATABASE_URL", "postgres://localhost/weigh_test")
	t.Setenv("WEIGH_HERMES_URL", "nats://nats:4222")
	t.Setenv("WEIGH_STRICT", "true")
	t.Setenv("WEIGH_MAX_CRITERIA", "12")
	t.Setenv("WEIGH_BATCH_CONCURRENCY", "2")
	t.Setenv("WEIGH_LOG_LEVEL", "debug")
	t.Setenv("WEIGH_LOG_FORMAT", "text")
	t.Setenv("WEIGH_CONNECT_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/weigh_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if !cfg.Evaluation.Strict {
		t.Error("expected strict evaluation")
	}
	if cfg.Evaluation.MaxCriteria != 12 {
		t.Errorf("expected max criteria 12, got %d", cfg.Evaluation.MaxCriteria)
	}
	if cfg.Evaluation.BatchConcurrency != 2 {
		t.Errorf("expected batch concurrency 2, got %d", cfg.Evaluation.BatchConcurrency)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format 'text', got '%s'", cfg.Logging.Format)
	}
	if cfg.Database.ConnectTimeout != 5*time.Second {
		t.Errorf("expected connect timeout 5s, got %s", cfg.Database.ConnectTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "weigh.yaml")
	data := []byte("server:\n  port: 7000\ndatabase:\n  connect_timeout: 2m\nevaluation:\n  strict: true\n  max_criteria: 9\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port to survive, got %d", cfg.Server.MetricsPort)
	}
	if !cfg.Evaluation.Strict || cfg.Evaluation.MaxCriteria != 9 {
		t.Errorf("unexpected evaluation config %+v", cfg.Evaluation)
	}
	if cfg.Evaluation.BatchConcurrency != 8 {
		t.Errorf("expected default batch concurrency, got %d", cfg.Evaluation.BatchConcurrency)
	}
	if cfg.Database.ConnectTimeout != 2*time.Minute {
		t.Errorf("expected connect timeout 2m, got %s", cfg.Database.ConnectTimeout)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	t.Setenv("WEIGH_MAX_CRITERIA", "1")
	if _, err := Load(""); err == nil {
		t.Error("expected error for max_criteria < 2")
	}
}
