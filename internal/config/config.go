// Package config loads speclimits configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/speclimits-go/pkg/speclimits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
	"gopkg.in/yaml.v3"
)

// Config holds all speclimits configuration.
type Config struct {
	// Measurement sources, one per process
	Sources []SourceConfig `yaml:"sources"`

	// Limits workbook
	Limits LimitsConfig `yaml:"limits"`

	// Column detection heuristics
	Detection normalize.Rules `yaml:"detection"`

	// Limit matching
	Match MatchConfig `yaml:"match"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// HTTP API
	Server ServerConfig `yaml:"server"`
}

// SourceConfig points at one wide measurement table.
type SourceConfig struct {
	Process string `yaml:"process"` // CD, CW
	Path    string `yaml:"path"`
	Sheet   string `yaml:"sheet,omitempty"`
}

// LimitsConfig configures the limits workbook.
type LimitsConfig struct {
	Path   string `yaml:"path"`
	Sheet  string `yaml:"sheet,omitempty"`
	Layout string `yaml:"layout"` // auto, flat, dual_block, multi_header, per_sheet
	Range  string `yaml:"range,omitempty"`
}

// MatchConfig configures limit matching.
type MatchConfig struct {
	Duplicates string `yaml:"duplicates"` // first, unique
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Sources: []SourceConfig{
			{Process: "CD", Path: "CD_unificado.csv"},
			{Process: "CW", Path: "CW_unificado.csv"},
		},
		Limits: LimitsConfig{
			Path:   "Limites en tablas (2).xlsx",
			Layout: string(models.LayoutAuto),
		},
		Detection: normalize.DefaultRules(),
		Match:     MatchConfig{Duplicates: string(match.DuplicatesFirst)},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides applies SPECLIMITS_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPECLIMITS_CD"); v != "" {
		c.SetSource(models.ProcessCD, v)
	}
	if v := os.Getenv("SPECLIMITS_CW"); v != "" {
		c.SetSource(models.ProcessCW, v)
	}
	if v := os.Getenv("SPECLIMITS_LIMITS"); v != "" {
		c.Limits.Path = v
	}
	if v := os.Getenv("SPECLIMITS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPECLIMITS_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// SetSource points the source of process p at path, adding it if absent.
func (c *Config) SetSource(p models.Process, path string) {
	for i := range c.Sources {
		if proc, err := models.ParseProcess(c.Sources[i].Process); err == nil && proc == p {
			c.Sources[i].Path = path
			return
		}
	}
	c.Sources = append(c.Sources, SourceConfig{Process: string(p), Path: path})
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for i, s := range c.Sources {
		if _, err := models.ParseProcess(s.Process); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if s.Path == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
	}
	if _, ok := models.ParseLimitLayout(c.Limits.Layout); !ok {
		return fmt.Errorf("limits.layout: invalid layout %q", c.Limits.Layout)
	}
	if _, err := match.ParseDuplicatePolicy(c.Match.Duplicates); err != nil {
		return fmt.Errorf("match.duplicates: %w", err)
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// Options converts the configuration into load options. Call Validate first.
func (c *Config) Options() speclimits.Options {
	opts := speclimits.Options{
		LimitsPath:  c.Limits.Path,
		LimitsSheet: c.Limits.Sheet,
		LimitsRange: c.Limits.Range,
		Rules:       c.Detection,
	}
	for _, s := range c.Sources {
		p, _ := models.ParseProcess(s.Process)
		opts.Sources = append(opts.Sources, speclimits.Source{Process: p, Path: s.Path, Sheet: s.Sheet})
	}
	opts.LimitsLayout, _ = models.ParseLimitLayout(c.Limits.Layout)
	opts.Duplicates, _ = match.ParseDuplicatePolicy(c.Match.Duplicates)
	return opts
}
