// Package config provides configuration management for avdskin.
// It supports an optional YAML configuration file, environment variables,
// and defaults that reproduce the stock Android conversion.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding a config file path.
const EnvConfigPath = "AVDSKIN_CONFIG"

// Config represents the complete avdskin configuration.
type Config struct {
	// Platform selects the target platform profile (android, ios)
	Platform string `yaml:"platform"`

	// TabletThresholdInches is the screen diagonal at which a device counts as a tablet
	TabletThresholdInches float64 `yaml:"tablet_threshold_inches"`

	// DwebpPath is the WebP conversion helper, looked up on PATH when not absolute
	DwebpPath string `yaml:"dwebp_path"`

	// Compression selects the PNG encoder level (fast, default, best)
	Compression string `yaml:"compression"`

	// Fonts overrides the font settings of the selected platform profile
	Fonts FontsConfig `yaml:"fonts"`
}

// FontsConfig holds optional font overrides. Empty fields keep the profile value.
type FontsConfig struct {
	System       string `yaml:"system"`
	Proportional string `yaml:"proportional"`
	Monospace    string `yaml:"monospace"`
	Small        int    `yaml:"small"`
	Medium       int    `yaml:"medium"`
	Large        int    `yaml:"large"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Platform:              "android",
		TabletThresholdInches: 6.5,
		DwebpPath:             "dwebp",
		Compression:           "default",
	}
}

// Load resolves the configuration: an explicit path wins, then $AVDSKIN_CONFIG,
// otherwise defaults with environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		cfg := Default()
		if err := cfg.applyEnvironment(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.TabletThresholdInches <= 0 {
		return fmt.Errorf("tablet_threshold_inches must be positive, got %v", c.TabletThresholdInches)
	}
	switch c.Compression {
	case "fast", "default", "best":
	default:
		return fmt.Errorf("invalid compression level: %s (valid options: fast, default, best)", c.Compression)
	}
	for name, size := range map[string]int{"small": c.Fonts.Small, "medium": c.Fonts.Medium, "large": c.Fonts.Large} {
		if size < 0 {
			return fmt.Errorf("fonts.%s must not be negative, got %d", name, size)
		}
	}
	return nil
}

func (c *Config) applyEnvironment() error {
	if v := os.Getenv("AVDSKIN_DWEBP"); v != "" {
		c.DwebpPath = v
	}
	if v := os.Getenv("AVDSKIN_TABLET_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid AVDSKIN_TABLET_THRESHOLD %q: %w", v, err)
		}
		c.TabletThresholdInches = f
	}
	if v := os.Getenv("AVDSKIN_PLATFORM"); v != "" {
		c.Platform = v
	}
	return nil
}
