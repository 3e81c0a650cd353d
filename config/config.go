// Package config provides patch run configuration loading and validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Mods    ModsConfig    `yaml:"mods"`
	Pack    PackConfig    `yaml:"pack"`
	Logging LoggingConfig `yaml:"logging"`
}

// GameConfig locates the game data to patch.
type GameConfig struct {
	Dir string `yaml:"dir"` // directory holding the pristine asset tables
	Out string `yaml:"out"` // directory the patched tables are written to
}

// ModsConfig locates the mods and fixes their application order.
type ModsConfig struct {
	Dir   string   `yaml:"dir"`   // directory holding the mod archives
	Order []string `yaml:"order"` // archive file names, first to last; later mods win
}

// PackConfig configures pack archive encoding.
type PackConfig struct {
	Compression string `yaml:"compression"` // "snappy", "zstd" or "none"
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Game.Out == "" {
		cfg.Game.Out = "patched"
	}
	if cfg.Mods.Dir == "" {
		cfg.Mods.Dir = "mods"
	}
	if cfg.Pack.Compression == "" {
		cfg.Pack.Compression = "snappy"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validate(cfg *Config) error {
	if cfg.Game.Dir == "" {
		return fmt.Errorf("game.dir is required")
	}

	validCompression := map[string]bool{"snappy": true, "zstd": true, "none": true}
	if !validCompression[cfg.Pack.Compression] {
		return fmt.Errorf("pack.compression must be 'snappy', 'zstd' or 'none', got %q", cfg.Pack.Compression)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
