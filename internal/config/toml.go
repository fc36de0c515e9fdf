// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Browser BrowserConfig `toml:"browser"`
	Profile ProfileConfig `toml:"profile"`
	Guide   GuideConfig   `toml:"guide"`
	Log     LogConfig     `toml:"log"`
	Serve   ServeConfig   `toml:"serve"`
}

// BrowserConfig maps catalog browsing defaults.
type BrowserConfig struct {
	Sort   *string `toml:"sort"`
	Filter *string `toml:"filter"`
	Status *string `toml:"status"`
}

// ProfileConfig maps GitHub profile lookup settings. The token is read from
// GITHUB_TOKEN only.
type ProfileConfig struct {
	Username *string   `toml:"username"`
	APIURL   *string   `toml:"api-url"`
	Timeout  *Duration `toml:"timeout"`
}

// GuideConfig maps guide backend settings. API keys are read from the
// environment only.
type GuideConfig struct {
	Backend       *string   `toml:"backend"`
	Model         *string   `toml:"model"`
	ThinkingDelay *Duration `toml:"thinking-delay"`
	BaseURL       *string   `toml:"base-url"`
}

// LogConfig maps log settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// ServeConfig maps local API server settings.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "600ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", text)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
