package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	if cfg.MaxTurns != 50 {
		t.Errorf("MaxTurns = %d, want 50", cfg.MaxTurns)
	}
	if cfg.CompactionReserve != 16384 {
		t.Errorf("CompactionReserve = %d, want 16384", cfg.CompactionReserve)
	}
	if cfg.KeepRecentTokens != 20000 {
		t.Errorf("KeepRecentTokens = %d, want 20000", cfg.KeepRecentTokens)
	}
	if cfg.RetryMaxRetries != 2 || cfg.RetryBaseDelayMS != 2000 || cfg.RetryMaxDelayMS != 60000 {
		t.Errorf("retry defaults = %+v, want base=2000 max=60000 retries=2", cfg)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := Load()
	if cfg.DefaultModelID != Default().DefaultModelID {
		t.Errorf("Load() without a config file should equal Default()")
	}
}

func TestLoadMergesOnDiskTOMLOverDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "agentcore")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	toml := `default_model = "gpt-5.2"
max_turns = 10
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.DefaultModelID != "gpt-5.2" {
		t.Errorf("DefaultModelID = %q, want gpt-5.2", cfg.DefaultModelID)
	}
	if cfg.MaxTurns != 10 {
		t.Errorf("MaxTurns = %d, want 10", cfg.MaxTurns)
	}
	// Fields absent from the TOML keep their defaults.
	if cfg.CompactionReserve != Default().CompactionReserve {
		t.Errorf("CompactionReserve should fall back to default when unset on disk")
	}
}

func TestRetryPolicyConvertsMillisecondsToSeconds(t *testing.T) {
	cfg := Default()
	policy := cfg.RetryPolicy()
	if policy.BaseDelay != 2.0 {
		t.Errorf("BaseDelay = %v, want 2.0s", policy.BaseDelay)
	}
	if policy.MaxDelay != 60.0 {
		t.Errorf("MaxDelay = %v, want 60.0s", policy.MaxDelay)
	}
}

func TestModelFallsBackToBareLLMModelWhenUncataloged(t *testing.T) {
	cfg := Default()
	cfg.DefaultModelID = "self-hosted-llama"
	model := cfg.Model()
	if model.ID != "self-hosted-llama" {
		t.Errorf("Model().ID = %q, want self-hosted-llama", model.ID)
	}
}
