// Package config loads the pipeline configuration from YAML with sane
// defaults for local development. API keys are taken from the environment
// rather than the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Recording configures the call-recording provider client.
type Recording struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"` // RECORDING_API_KEY
}

// Models names the LLM models backing each branch.
type Models struct {
	Scorer    string `yaml:"scorer"`
	Notes     string `yaml:"notes"`
	Simulator string `yaml:"simulator"`
}

// Timing holds the two fixed pipeline delays.
type Timing struct {
	RetryBackoffSeconds int `yaml:"retry_backoff_seconds"`
	SettleDelaySeconds  int `yaml:"settle_delay_seconds"`
}

// Root is the full configuration tree.
type Root struct {
	LogLevel  string    `yaml:"log_level"`
	Recording Recording `yaml:"recording"`
	Models    Models    `yaml:"models"`
	Timing    Timing    `yaml:"timing"`
	Store     struct {
		Driver string `yaml:"driver"` // "memory" or "sqlite"
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`
}

// Default returns the baseline configuration used when no file is given.
func Default() *Root {
	r := &Root{
		LogLevel: "info",
		Recording: Recording{
			BaseURL: "https://us-east-1.recall.ai/api/v1",
		},
		Models: Models{
			Scorer:    "gpt-4o-mini",
			Notes:     "claude-3-5-sonnet-20241022",
			Simulator: "claude-3-5-sonnet-20241022",
		},
		Timing: Timing{RetryBackoffSeconds: 5, SettleDelaySeconds: 2},
	}
	r.Store.Driver = "memory"
	return r
}

// Load reads the YAML file at path, layering it over Default. An empty path
// returns the defaults untouched. Environment secrets are applied last.
func Load(path string) (*Root, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.Recording.APIKey = os.Getenv("RECORDING_API_KEY")
	return cfg, nil
}

// RetryBackoff returns the transcript-retry delay as a duration.
func (r *Root) RetryBackoff() time.Duration {
	return time.Duration(r.Timing.RetryBackoffSeconds) * time.Second
}

// SettleDelay returns the post-completion settle delay as a duration.
func (r *Root) SettleDelay() time.Duration {
	return time.Duration(r.Timing.SettleDelaySeconds) * time.Second
}
