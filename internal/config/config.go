// Package config holds all linklint configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all linklint configuration.
type Config struct {
	// Record file layout
	Records RecordsConfig `yaml:"records"`

	// Structural validation behavior
	Validation ValidationConfig `yaml:"validation"`

	// Remote verification (verify-urls)
	Remote RemoteConfig `yaml:"remote"`

	// Index summary output
	Index IndexConfig `yaml:"index"`

	// Changed-file detection
	Changes ChangesConfig `yaml:"changes"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RecordsConfig locates the record shards.
type RecordsConfig struct {
	Dir          string `yaml:"dir"`
	LinksPerFile int    `yaml:"links_per_file"`
}

// ValidationConfig selects the validator variant.
type ValidationConfig struct {
	Quoting     string `yaml:"quoting"`     // strict, lenient
	Aggregation string `yaml:"aggregation"` // fail-fast, collect
}

// RemoteConfig configures the network verification pass.
type RemoteConfig struct {
	LivenessTimeout string  `yaml:"liveness_timeout"`
	ImageTimeout    string  `yaml:"image_timeout"`
	Concurrency     int     `yaml:"concurrency"`
	TargetWidth     int     `yaml:"target_width"`
	TargetHeight    int     `yaml:"target_height"`
	RatioTolerance  float64 `yaml:"ratio_tolerance"`
}

// IndexConfig configures the summary document.
type IndexConfig struct {
	File       string `yaml:"file"`
	WarnHeader bool   `yaml:"warn_header"`
}

// ChangesConfig configures changed-file detection.
type ChangesConfig struct {
	// BaseRef pins the diff base; empty means auto-resolve
	// (origin/master, origin/main, master, main).
	BaseRef string `yaml:"base_ref"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Records: RecordsConfig{
			Dir:          ".",
			LinksPerFile: 100,
		},
		Validation: ValidationConfig{
			Quoting:     "strict",
			Aggregation: "fail-fast",
		},
		Remote: RemoteConfig{
			LivenessTimeout: "10s",
			ImageTimeout:    "30s",
			Concurrency:     4,
			TargetWidth:     460,
			TargetHeight:    215,
			RatioTolerance:  0.1,
		},
		Index: IndexConfig{
			File:       "_index.cfg",
			WarnHeader: true,
		},
		Changes: ChangesConfig{},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("LINKLINT_RECORDS_DIR"); dir != "" {
		c.Records.Dir = dir
	}
	if q := os.Getenv("LINKLINT_QUOTING"); q != "" {
		c.Validation.Quoting = q
	}
	if a := os.Getenv("LINKLINT_AGGREGATION"); a != "" {
		c.Validation.Aggregation = a
	}
	if ref := os.Getenv("LINKLINT_BASE_REF"); ref != "" {
		c.Changes.BaseRef = ref
	}
	if n := os.Getenv("LINKLINT_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			c.Remote.Concurrency = v
		}
	}
	if lvl := os.Getenv("LINKLINT_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Records.Dir == "" {
		return fmt.Errorf("records.dir must not be empty")
	}
	if c.Records.LinksPerFile <= 0 {
		return fmt.Errorf("records.links_per_file must be positive, got %d", c.Records.LinksPerFile)
	}
	switch c.Validation.Quoting {
	case "strict", "lenient":
	default:
		return fmt.Errorf("validation.quoting must be strict or lenient, got %q", c.Validation.Quoting)
	}
	switch c.Validation.Aggregation {
	case "fail-fast", "collect":
	default:
		return fmt.Errorf("validation.aggregation must be fail-fast or collect, got %q", c.Validation.Aggregation)
	}
	if _, err := time.ParseDuration(c.Remote.LivenessTimeout); err != nil {
		return fmt.Errorf("remote.liveness_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Remote.ImageTimeout); err != nil {
		return fmt.Errorf("remote.image_timeout: %w", err)
	}
	if c.Remote.Concurrency <= 0 {
		return fmt.Errorf("remote.concurrency must be positive, got %d", c.Remote.Concurrency)
	}
	if c.Remote.TargetWidth <= 0 || c.Remote.TargetHeight <= 0 {
		return fmt.Errorf("remote target dimensions must be positive, got %dx%d",
			c.Remote.TargetWidth, c.Remote.TargetHeight)
	}
	if c.Remote.RatioTolerance <= 0 {
		return fmt.Errorf("remote.ratio_tolerance must be positive, got %g", c.Remote.RatioTolerance)
	}
	if c.Index.File == "" {
		return fmt.Errorf("index.file must not be empty")
	}
	return nil
}

// LivenessTimeoutDuration parses the liveness timeout, falling back to 10s.
func (c *RemoteConfig) LivenessTimeoutDuration() time.Duration {
	return parseDuration(c.LivenessTimeout, 10*time.Second)
}

// ImageTimeoutDuration parses the image download timeout, falling back to 30s.
func (c *RemoteConfig) ImageTimeoutDuration() time.Duration {
	return parseDuration(c.ImageTimeout, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
