// Package config loads toolchain configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Export   ExportConfig   `yaml:"export"`
	Log      LogConfig      `yaml:"log"`
}

type ResolverConfig struct {
	// SearchPaths are walked in order for *.wod module sources.
	SearchPaths []string `yaml:"search_paths"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type DefaultsConfig struct {
	Track  string `yaml:"track"`
	Gender string `yaml:"gender"`
}

type ExportConfig struct {
	// OpenEndedMinutes is the calendar duration assumed for open-ended
	// blocks such as an uncapped ForTime.
	OpenEndedMinutes int `yaml:"open_ended_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{SearchPaths: []string{"."}},
		Defaults: DefaultsConfig{Track: "RX", Gender: "male"},
		Export:   ExportConfig{OpenEndedMinutes: 20},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. An empty path starts from Default. Env vars use the prefix
// WODC_ and underscore-separated paths:
//
//	WODC_SEARCH_PATHS (colon-separated), WODC_CATALOG_PATH,
//	WODC_TRACK, WODC_GENDER, WODC_OPEN_ENDED_MINUTES,
//	WODC_LOG_LEVEL, WODC_LOG_FORMAT
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WODC_SEARCH_PATHS"); v != "" {
		cfg.Resolver.SearchPaths = strings.Split(v, ":")
	}
	if v := os.Getenv("WODC_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("WODC_TRACK"); v != "" {
		cfg.Defaults.Track = v
	}
	if v := os.Getenv("WODC_GENDER"); v != "" {
		cfg.Defaults.Gender = v
	}
	if v := os.Getenv("WODC_OPEN_ENDED_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil {
			cfg.Export.OpenEndedMinutes = mins
		}
	}
	if v := os.Getenv("WODC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WODC_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func (c *Config) validate() error {
	switch c.Defaults.Track {
	case "RX", "INTERMEDIATE", "SCALED":
	default:
		return fmt.Errorf("defaults.track %q is not one of RX, INTERMEDIATE, SCALED", c.Defaults.Track)
	}
	switch c.Defaults.Gender {
	case "male", "female":
	default:
		return fmt.Errorf("defaults.gender %q is not one of male, female", c.Defaults.Gender)
	}
	if c.Export.OpenEndedMinutes <= 0 {
		return fmt.Errorf("export.open_ended_minutes must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}
