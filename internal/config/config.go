// Package config defines the application configuration and its loading.
package config

import (
	"fmt"
	"time"
)

// Config represents the full application configuration.
type Config struct {
	Git      GitConfig      `yaml:"git"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Report   ReportConfig   `yaml:"report"`
	Output   OutputConfig   `yaml:"output"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GitConfig configures the repository under analysis.
type GitConfig struct {
	// RepositoryURL is the clone source. Empty means the checkout in
	// RepositoryDir is used as-is.
	RepositoryURL string `yaml:"repositoryURL"`
	RepositoryDir string `yaml:"repositoryDir"`
}

// AnalysisConfig configures the external command that produces reports.
type AnalysisConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Env     []string `yaml:"env"`
	Timeout string   `yaml:"timeout"`
}

// TimeoutDuration parses the configured analysis timeout.
func (a AnalysisConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid analysis timeout %q: %w", a.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("analysis timeout must be positive, got %q", a.Timeout)
	}
	return d, nil
}

// ReportConfig pins the report location. Both fields are optional; an empty
// Path means the report is located by scanning the repository directory, and
// an empty SidecarPath means the sidecar is derived from the report path.
type ReportConfig struct {
	Path        string `yaml:"path"`
	SidecarPath string `yaml:"sidecarPath"`
}

// OutputConfig configures exports of parsed reports.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// Format selects the export rendering: "json", "markdown" or "both".
	Format string `yaml:"format"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, human
}

// Validate checks the configuration for values that can never work.
func (c Config) Validate() error {
	switch c.Output.Format {
	case "json", "markdown", "both":
	default:
		return fmt.Errorf("invalid output format %q (want json, markdown or both)", c.Output.Format)
	}

	if c.Analysis.Timeout != "" {
		if _, err := c.Analysis.TimeoutDuration(); err != nil {
			return err
		}
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("store is enabled but store.path is empty")
	}

	return nil
}
