// Package config implements the TOML-backed configuration layer from
// SPEC_FULL.md §4.9, grounded on the teacher pack's
// neilberkman-ccrider/internal/core/config package: Load reads a TOML
// file under the user config directory and falls back to defaults on
// any read error rather than failing startup.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/unifiedllm"
)

// Config holds the startup-time settings for the agent loop and
// session store. It is read once and passed by value/pointer into the
// components that need it; it is never a package-level global.
type Config struct {
	DefaultModelID string `toml:"default_model"`
	MaxTurns       int    `toml:"max_turns"`

	CompactionWindowTokens int `toml:"compaction_window_tokens"`
	CompactionReserve      int `toml:"compaction_reserve"`
	KeepRecentTokens       int `toml:"keep_recent_tokens"`

	RetryBaseDelayMS int `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS  int `toml:"retry_max_delay_ms"`
	RetryMaxRetries  int `toml:"retry_max_retries"`

	DefaultPermission string `toml:"default_permission"` // "allow", "confirm", or "deny"

	SessionDir string `toml:"session_dir"`
}

// Default returns the built-in defaults, matching spec.md §4.7/§4.8's
// stated defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DefaultModelID:         "claude-sonnet-4-5",
		MaxTurns:               50,
		CompactionWindowTokens: 200000,
		CompactionReserve:      16384,
		KeepRecentTokens:       20000,
		RetryBaseDelayMS:       2000,
		RetryMaxDelayMS:        60000,
		RetryMaxRetries:        2,
		DefaultPermission:      "confirm",
		SessionDir:             filepath.Join(home, ".local", "share", "agentcore", "sessions"),
	}
}

// Path returns the default config file location,
// ~/.config/agentcore/config.toml.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "agentcore", "config.toml")
}

// Load reads the TOML config file at Path(), filling in any fields it
// sets on top of Default(). A missing or unparsable file is never
// fatal: Load always returns usable defaults.
func Load() *Config {
	cfg := Default()
	path := Path()
	if path == "" {
		return cfg
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	var onDisk Config
	if _, err := toml.DecodeFile(path, &onDisk); err != nil {
		return cfg
	}
	mergeNonZero(cfg, &onDisk)
	return cfg
}

func mergeNonZero(cfg, onDisk *Config) {
	if onDisk.DefaultModelID != "" {
		cfg.DefaultModelID = onDisk.DefaultModelID
	}
	if onDisk.MaxTurns != 0 {
		cfg.MaxTurns = onDisk.MaxTurns
	}
	if onDisk.CompactionWindowTokens != 0 {
		cfg.CompactionWindowTokens = onDisk.CompactionWindowTokens
	}
	if onDisk.CompactionReserve != 0 {
		cfg.CompactionReserve = onDisk.CompactionReserve
	}
	if onDisk.KeepRecentTokens != 0 {
		cfg.KeepRecentTokens = onDisk.KeepRecentTokens
	}
	if onDisk.RetryBaseDelayMS != 0 {
		cfg.RetryBaseDelayMS = onDisk.RetryBaseDelayMS
	}
	if onDisk.RetryMaxDelayMS != 0 {
		cfg.RetryMaxDelayMS = onDisk.RetryMaxDelayMS
	}
	if onDisk.RetryMaxRetries != 0 {
		cfg.RetryMaxRetries = onDisk.RetryMaxRetries
	}
	if onDisk.DefaultPermission != "" {
		cfg.DefaultPermission = onDisk.DefaultPermission
	}
	if onDisk.SessionDir != "" {
		cfg.SessionDir = onDisk.SessionDir
	}
}

// RetryPolicy builds a unifiedllm.RetryPolicy from the configured
// delays, matching spec.md §4.8's shape.
func (c *Config) RetryPolicy() unifiedllm.RetryPolicy {
	policy := unifiedllm.DefaultRetryPolicy()
	policy.BaseDelay = float64(c.RetryBaseDelayMS) / 1000
	policy.MaxDelay = float64(c.RetryMaxDelayMS) / 1000
	policy.MaxRetries = c.RetryMaxRetries
	return policy
}

// Model resolves the configured default model against the built-in
// catalog, falling back to a bare LLMModel keyed only by ID if it is
// not cataloged (e.g. a self-hosted or enterprise model).
func (c *Config) Model() agentmodel.LLMModel {
	if m, ok := unifiedllm.ModelByID(c.DefaultModelID); ok {
		return m
	}
	return agentmodel.LLMModel{ID: c.DefaultModelID}
}
