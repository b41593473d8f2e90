package config

import (
	"os"
	"strings"
	"sync"
	"testing"
)

func resetProcess() {
	process.mu.Lock()
	process.cfg = nil
	process.path = ""
	process.overrides = nil
	process.mu.Unlock()
	process.once = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetProcess()
	t.Cleanup(resetProcess)

	path := writeConfig(t, "sampling:\n  count: 10\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Sampling.Count != 10 {
		t.Errorf("expected count 10, got %d", cfg.Sampling.Count)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetProcess()
	t.Cleanup(resetProcess)

	first := writeConfig(t, "sampling:\n  count: 1\n")
	second := writeConfig(t, "sampling:\n  count: 2\n")

	if err := Initialize(first); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(second); err != nil {
		t.Fatal(err)
	}
	if got := GetConfig().Sampling.Count; got != 1 {
		t.Errorf("expected first config to win, got count %d", got)
	}
}

func TestInitialize_EmptyPathUsesDefaults(t *testing.T) {
	resetProcess()
	t.Cleanup(resetProcess)

	if err := Initialize(""); err != nil {
		t.Fatal(err)
	}
	if got := GetConfig().Store.Backend; got != DefaultStoreBackend {
		t.Errorf("expected default backend, got %q", got)
	}
}

func TestInitialize_Overrides(t *testing.T) {
	tests := []struct {
		name      string
		override  Override
		wantLevel string
		wantErr   string
	}{
		{
			name:      "applied after file",
			override:  func(c *Config) { c.Telemetry.Logging.Level = "debug" },
			wantLevel: "debug",
		},
		{
			name:     "validated",
			override: func(c *Config) { c.Telemetry.Logging.Level = "loud" },
			wantErr:  "flag overrides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetProcess()
			t.Cleanup(resetProcess)

			path := writeConfig(t, "telemetry:\n  logging:\n    level: warn\n")
			err := Initialize(path, tt.override)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				if GetConfig() != nil {
					t.Error("expected no config after a failed initialization")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := GetConfig().Telemetry.Logging.Level; got != tt.wantLevel {
				t.Errorf("level = %q, want %q", got, tt.wantLevel)
			}
		})
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetProcess()

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestReloadConfig(t *testing.T) {
	resetProcess()
	t.Cleanup(resetProcess)

	path := writeConfig(t, "lint:\n  workers: 1\n")
	if err := Initialize(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("lint:\n  workers: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := GetConfig().Lint.Workers; got != 8 {
		t.Errorf("expected 8 workers after reload, got %d", got)
	}
}

func TestReloadConfig_KeepsOverrides(t *testing.T) {
	resetProcess()
	t.Cleanup(resetProcess)

	path := writeConfig(t, "lint:\n  workers: 1\ntelemetry:\n  logging:\n    level: info\n")
	debug := func(c *Config) { c.Telemetry.Logging.Level = "debug" }
	if err := Initialize(path, debug); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("lint:\n  workers: 4\ntelemetry:\n  logging:\n    level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(); err != nil {
		t.Fatal(err)
	}
	cfg := GetConfig()
	if cfg.Lint.Workers != 4 {
		t.Errorf("expected reloaded workers 4, got %d", cfg.Lint.Workers)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected flag level to survive reload, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestReloadConfig_ValidationFailure(t *testing.T) {
	resetProcess()
	t.Cleanup(resetProcess)

	path := writeConfig(t, "lint:\n  workers: 2\n")
	if err := Initialize(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("lint:\n  workers: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(); err == nil {
		t.Fatal("expected reload to fail")
	}
	if got := GetConfig().Lint.Workers; got != 2 {
		t.Errorf("expected previous config to remain, got %d workers", got)
	}
}
