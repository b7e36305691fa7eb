package config

import (
	"time"

	"charsmith/internal/core/domain"
	"charsmith/internal/infra/genapi"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	API     genapi.Config      `yaml:"api"`
	State   StateConfig        `yaml:"state"`
	Drafts  DraftsConfig       `yaml:"drafts"`
	Library LibraryConfig      `yaml:"library"`
	Batch   domain.BatchConfig `yaml:"batch"`
	Logging LoggingConfig      `yaml:"logging"`
}

// StateConfig holds batch-state persistence settings.
type StateConfig struct {
	Dir       string        `yaml:"dir"`
	Retention time.Duration `yaml:"retention"` // 0 = no automatic expiry
}

// DraftsConfig holds draft output settings.
type DraftsConfig struct {
	Dir string `yaml:"dir"`
}

// LibraryConfig holds the searchable draft library settings.
type LibraryConfig struct {
	Path string `yaml:"path"` // empty disables the library
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
