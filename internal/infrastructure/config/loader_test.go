package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/trustgate/internal/infrastructure/config"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := config.NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Verification.TimeoutSeconds != 10 {
		t.Errorf("Verification.TimeoutSeconds = %d, want 10", cfg.Verification.TimeoutSeconds)
	}
	if cfg.Execution.TimeoutSeconds != 300 {
		t.Errorf("Execution.TimeoutSeconds = %d, want 300", cfg.Execution.TimeoutSeconds)
	}
	if cfg.History.Backend != "sqlite" {
		t.Errorf("History.Backend = %q, want sqlite", cfg.History.Backend)
	}
}

func TestLoadParsesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: "1"
security:
  extra_patterns:
    - 'drop\s+table'
verification:
  timeout_seconds: 20
history:
  backend: jsonl
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cfg, err := config.NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Verification.TimeoutSeconds != 20 {
		t.Errorf("Verification.TimeoutSeconds = %d, want 20", cfg.Verification.TimeoutSeconds)
	}
	if len(cfg.Security.ExtraPatterns) != 1 {
		t.Errorf("ExtraPatterns = %v, want one pattern", cfg.Security.ExtraPatterns)
	}
	if cfg.History.Backend != "jsonl" {
		t.Errorf("History.Backend = %q, want jsonl", cfg.History.Backend)
	}
	// Unset fields are hydrated, not left at zero.
	if cfg.Execution.OutputTailBytes != 1000 {
		t.Errorf("Execution.OutputTailBytes = %d, want hydrated 1000", cfg.Execution.OutputTailBytes)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("::not yaml::"), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := config.NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestEnvOverrideSelectsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	t.Setenv("TRUSTGATE_CONFIG", path)

	loader := config.NewFileLoader("")
	if got := loader.Path(); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := config.NewFileLoader(path)

	if err := os.WriteFile(path, []byte("version: \"9\"\n"), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cfg, err := loader.Reset()
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if cfg.ConfigFormatVersion != "1" {
		t.Errorf("ConfigFormatVersion = %q, want default", cfg.ConfigFormatVersion)
	}

	reloaded, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() after Reset error = %v", err)
	}
	if reloaded.ConfigFormatVersion != "1" {
		t.Errorf("reloaded version = %q, want default", reloaded.ConfigFormatVersion)
	}
}
