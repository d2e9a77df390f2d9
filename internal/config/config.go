// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// agentline.
//
// Configuration is TOML with sensible defaults and environment
// variable overrides.
//
// Configuration file locations (in order of precedence):
//   - ~/.agentline/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/agentline-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete agentline configuration.
type Config struct {
	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains agent backend connection settings.
type BackendConfig struct {
	// URL is the base URL of the agent backend
	URL string `toml:"url"`
	// ChatPath is the streaming chat endpoint path
	ChatPath string `toml:"chat_path"`
	// RespondPath is the answer endpoint path for interactive questions
	RespondPath string `toml:"respond_path"`
	// TimeoutSecs is the timeout for non-streaming requests
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSecond caps outgoing turn starts
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the color theme name: "dark", "light"
	Theme string `toml:"theme"`
	// Markdown enables glamour rendering of completed messages
	Markdown bool `toml:"markdown"`
	// SyntaxHighlight enables chroma highlighting in code blocks
	SyntaxHighlight bool `toml:"syntax_highlight"`
	// ShowCost displays per-session cost in the status bar
	ShowCost bool `toml:"show_cost"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://127.0.0.1:8000",
			ChatPath:          "/api/chat",
			RespondPath:       "/api/chat/respond",
			TimeoutSecs:       30,
			RequestsPerSecond: 2,
		},
		UI: UIConfig{
			Theme:           "dark",
			Markdown:        true,
			SyntaxHighlight: true,
			ShowCost:        true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the agentline configuration directory.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".agentline"), nil
}

// ConfigPath returns the full path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the config directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: defaults, then the config file if
// present, then environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML merges a TOML file into an existing config.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// Save writes the configuration to the default path. The write is
// atomic so a crash mid-save never leaves a truncated config behind
// for the next load to choke on.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}

// WriteDefaultIfMissing creates a default config file on first run so
// users have a template to edit. An existing file is left untouched.
func WriteDefaultIfMissing() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(Default())
}

// fillDefaults replaces zero values with the built-in defaults so a
// sparse config file still yields a usable config.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Backend.URL == "" {
		c.Backend.URL = def.Backend.URL
	}
	if c.Backend.ChatPath == "" {
		c.Backend.ChatPath = def.Backend.ChatPath
	}
	if c.Backend.RespondPath == "" {
		c.Backend.RespondPath = def.Backend.RespondPath
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.Backend.RequestsPerSecond == 0 {
		c.Backend.RequestsPerSecond = def.Backend.RequestsPerSecond
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies AGENTLINE_* environment variables on top
// of file values.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("AGENTLINE_BACKEND_URL"); u != "" {
		c.Backend.URL = u
	}
	if t := os.Getenv("AGENTLINE_TIMEOUT_SECS"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil && secs > 0 {
			c.Backend.TimeoutSecs = secs
		}
	}
	if theme := os.Getenv("AGENTLINE_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if md := os.Getenv("AGENTLINE_NO_MARKDOWN"); md != "" {
		c.UI.Markdown = false
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("backend.url must be a valid http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("backend.url scheme must be http or https")
	}
	if c.Backend.TimeoutSecs < 0 {
		return errors.New("backend.timeout_secs must not be negative")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return errors.New("ui.theme must be \"dark\" or \"light\"")
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first
// use. Falls back to defaults when loading fails.
func Global() *Config {
	globalMu.RLock()
	cfg := globalCfg
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	loaded, err := Load()
	if err != nil {
		loaded = Default()
	}

	globalMu.Lock()
	globalCfg = loaded
	globalMu.Unlock()
	return loaded
}

// SetGlobal replaces the process-wide configuration, used by the
// config watcher on hot reload.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}
