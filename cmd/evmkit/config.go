package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/eth2030/evmkit/core/forks"
)

// Configuration errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// PagerOff disables paging when used as the pager command.
const PagerOff = "-"

// Config holds the settings shared by all commands. Values come from the
// defaults, then the TOML file named by --config, then command-line flags.
type Config struct {
	// Fork is the upgrade used to judge instruction availability.
	Fork forks.Upgrade `toml:"fork"`

	// Chain selects the activation table for "forks at".
	Chain uint64 `toml:"chain"`

	Verbosity int    `toml:"verbosity"`
	LogFormat string `toml:"log-format"`

	// Pager is the command listings are piped through when stdout is a
	// terminal. Empty means $PAGER, falling back to "less".
	Pager string `toml:"pager"`
	Color string `toml:"color"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Fork:      forks.Prague,
		Chain:     uint64(forks.Mainnet),
		Verbosity: 2,
		LogFormat: "text",
		Color:     ColorAuto,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !c.Fork.Valid() {
		return fmt.Errorf("%w: unknown fork %v", ErrInvalidConfig, c.Fork)
	}
	if c.Chain == 0 {
		return fmt.Errorf("%w: chain id must be non-zero", ErrInvalidConfig)
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("%w: verbosity must be 0-5, got %d", ErrInvalidConfig, c.Verbosity)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", ErrInvalidConfig, c.Color)
	}
	return nil
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decodeConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Marshal renders the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
