package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Browser.Sort != nil || cfg.Guide.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[browser]
sort = "rarity"
filter = "owned"

[profile]
username = "octo"
timeout = "5s"

[guide]
backend = "gemini"
thinking-delay = "250ms"

[log]
level = "debug"

[serve]
addr = "127.0.0.1:9000"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Browser.Sort == nil || *cfg.Browser.Sort != "rarity" {
		t.Fatalf("unexpected sort: %v", cfg.Browser.Sort)
	}
	if cfg.Browser.Status != nil {
		t.Fatalf("expected status unset")
	}
	if cfg.Profile.Username == nil || *cfg.Profile.Username != "octo" {
		t.Fatalf("unexpected username: %v", cfg.Profile.Username)
	}
	if cfg.Profile.Timeout == nil || cfg.Profile.Timeout.Duration != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Profile.Timeout)
	}
	if cfg.Guide.ThinkingDelay == nil || cfg.Guide.ThinkingDelay.Duration != 250*time.Millisecond {
		t.Fatalf("unexpected thinking delay: %v", cfg.Guide.ThinkingDelay)
	}
	if cfg.Serve.Addr == nil || *cfg.Serve.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %v", cfg.Serve.Addr)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "[guide]\nthinking-delay = \"soon\"\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[browser]\ncolour = \"red\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "browser.colour") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))

	if got, want := DefaultConfigPath(), filepath.Join(root, "cfg", "badgedex", "config.toml"); got != want {
		t.Fatalf("config path: got %s want %s", got, want)
	}
	if got, want := DefaultDBPath(), filepath.Join(root, "data", "badgedex", "badgedex.db"); got != want {
		t.Fatalf("db path: got %s want %s", got, want)
	}
	if got, want := DefaultLogPath(), filepath.Join(root, "state", "badgedex", "badgedex.log"); got != want {
		t.Fatalf("log path: got %s want %s", got, want)
	}
}
