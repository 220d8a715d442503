// Package config loads the tool-level configuration: defaults for output
// rendering and logging. Per-module parameter defaults live in their own
// files and are resolved by pkg/params.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/unicmd/unicmd/pkg/params"
)

// LoggingConfig controls diagnostic logging on stderr.
type LoggingConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

// OutputConfig controls how result envelopes are rendered.
type OutputConfig struct {
	Format string `toml:"format" validate:"omitempty,oneof=toml raw"`
	File   string `toml:"file"`
}

// Config is the tool configuration. Command-line flags override it.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Output  OutputConfig  `toml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Format: "toml"},
	}
}

// Load reads the tool configuration from unicmd.toml in the config
// directory. A missing file yields the defaults; a malformed or invalid file
// degrades to the defaults with a logged warning, never an error.
func Load() Config {
	return loadFrom(filepath.Join(params.ConfigDir(), "unicmd.toml"))
}

func loadFrom(path string) Config {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Cannot read tool config")
		}
		return Default()
	}
	if err := Validate(cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Invalid tool config, using defaults")
		return Default()
	}
	return cfg
}

// Validate checks field constraints on a configuration value.
func Validate(cfg Config) error {
	return validator.New().Struct(cfg)
}
