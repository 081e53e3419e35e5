// Package config provides configuration loading and management for
// Personascope.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/personascope/vocabulary/persona"
)

// Config represents the complete Personascope configuration
type Config struct {
	Classification ClassificationConfig `yaml:"classification"`
	Spotlight      SpotlightConfig      `yaml:"spotlight"`
	Export         ExportConfig         `yaml:"export"`
}

// ClassificationConfig configures the persona classifier
type ClassificationConfig struct {
	// Mode selects how records contribute to persona buckets
	// ("dominant" or "multi")
	Mode string `yaml:"mode"`
	// Keywords holds per-persona keyword overrides; a persona listed
	// here replaces its default list entirely
	Keywords map[string][]string `yaml:"keywords"`
}

// SpotlightConfig configures the per-month feedback listing
type SpotlightConfig struct {
	// MinTextLength drops entries with shorter feedback text
	MinTextLength int `yaml:"min_text_length"`
}

// ExportConfig configures the export command
type ExportConfig struct {
	// Format is the default export format ("csv" or "json")
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Classification: ClassificationConfig{
			Mode:     "dominant",
			Keywords: nil, // catalog defaults
		},
		Spotlight: SpotlightConfig{
			MinTextLength: 0,
		},
		Export: ExportConfig{
			Format: "csv",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Classification.Mode {
	case "dominant", "multi":
	default:
		return fmt.Errorf("classification.mode must be dominant or multi, got %q", c.Classification.Mode)
	}
	for key := range c.Classification.Keywords {
		if _, ok := persona.ByKey(persona.Key(key)); !ok {
			return fmt.Errorf("classification.keywords: unknown persona %q", key)
		}
	}
	if c.Spotlight.MinTextLength < 0 {
		return fmt.Errorf("spotlight.min_text_length must not be negative")
	}
	switch c.Export.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("export.format must be csv or json, got %q", c.Export.Format)
	}
	return nil
}

// EffectiveKeywords returns the default keyword catalog with the
// configured overrides applied. Each call returns a fresh copy, so a
// recomputation always sees the current configuration.
func (c *Config) EffectiveKeywords() persona.Keywords {
	kw := persona.DefaultKeywords()
	for key, list := range c.Classification.Keywords {
		kw[persona.Key(key)] = append([]string(nil), list...)
	}
	return kw
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Classification.Mode != "" {
		c.Classification.Mode = other.Classification.Mode
	}
	if len(other.Classification.Keywords) > 0 {
		if c.Classification.Keywords == nil {
			c.Classification.Keywords = make(map[string][]string, len(other.Classification.Keywords))
		}
		for key, list := range other.Classification.Keywords {
			c.Classification.Keywords[key] = list
		}
	}

	if other.Spotlight.MinTextLength != 0 {
		c.Spotlight.MinTextLength = other.Spotlight.MinTextLength
	}

	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
}
