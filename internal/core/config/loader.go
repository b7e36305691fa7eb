package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. Environment variables in
// the file content are expanded before parsing. The file is unmarshaled
// over the defaults, so keys absent from the file fall back while an
// explicit zero (for example max_retries: 0) is kept as written.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.API.Model == "" {
		cfg.API.Model = "gpt-4o-mini"
	}
	if cfg.API.MaxTokens == 0 {
		cfg.API.MaxTokens = 2048
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 120 * time.Second
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = ".charsmith/state"
	}
	if cfg.State.Retention == 0 {
		cfg.State.Retention = 7 * 24 * time.Hour
	}
	if cfg.Drafts.Dir == "" {
		cfg.Drafts.Dir = "drafts"
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = 3
	}
	if cfg.Batch.CallsPerSecond == 0 {
		cfg.Batch.CallsPerSecond = 1
	}
	if cfg.Batch.MaxRetries == 0 {
		cfg.Batch.MaxRetries = 3
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
