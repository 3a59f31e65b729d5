package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"transcodesched/internal/config"
)

func TestLoadDefaultsExpandPathsUnderHome(t *testing.T) {
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

	wantLogDir := filepath.Join(tempHome, ".local", "share", "transcodesched", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Transcoder.Backend != "sim" {
		t.Fatalf("expected default backend sim, got %q", cfg.Transcoder.Backend)
	}
	if !cfg.ResourcePolicy.InitiallyAvailable {
		t.Fatal("expected resource policy to default to available")
	}
}

func TestLoadFallsBackToSimForUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcodesched.toml")
	if err := os.WriteFile(path, []byte("[transcoder]\nbackend = \"bogus\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	// normalize() silently coerces an unrecognized backend to "sim" rather
	// than failing, the same fallback normalizeLogging applies to an
	// unrecognized format value.
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcoder.Backend != "sim" {
		t.Fatalf("expected unrecognized backend to fall back to sim, got %q", cfg.Transcoder.Backend)
	}
}

func TestLoadDefaultsEmptyDraptoBinaryWhenBackendIsDrapto(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcodesched.toml")
	content := "[transcoder]\nbackend = \"drapto\"\ndrapto_binary = \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	// An empty drapto_binary is restored to its default by normalize() before
	// validation runs, so this should succeed rather than fail.
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty sample config")
	}
}
