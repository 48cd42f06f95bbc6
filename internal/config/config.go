/*
Package config handles loading speakeasy configuration.

Configuration is read from a YAML file (default ~/.config/speakeasy/config.yaml)
and overridden by SPEAKEASY_* environment variables.

Schema:

	store:
	  backend: json        # json, sqlite, bolt or memory
	  path: speakeasy_data.json  # default depends on backend (.json, .db, .bolt)
	log:
	  level: warn          # debug, info, warn, error
	  format: console      # console or json
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/khanglvm/speakeasy/internal/knowledge"
	"go.uber.org/zap/zapcore"
)

// Config represents the root configuration structure.
type Config struct {
	// Store selects the knowledge store backend and location.
	Store StoreConfig `koanf:"store"`

	// Log controls logger level and encoding.
	Log LogConfig `koanf:"log"`
}

// StoreConfig selects the knowledge store.
type StoreConfig struct {
	// Backend is one of json, sqlite, bolt or memory.
	Backend string `koanf:"backend"`

	// Path is the file backing the store (ignored by memory). Empty means
	// speakeasy_data.json, .db or .bolt depending on Backend.
	Path string `koanf:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a zap level name (debug, info, warn, error).
	Level string `koanf:"level"`

	// Format is "console" or "json".
	Format string `koanf:"format"`
}

// Defaults
const (
	DefaultBackend   = knowledge.BackendJSON
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"
)

// NewConfig creates a configuration with defaults applied.
func NewConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultBackend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Validate checks backend, path and logging settings.
func (c *Config) Validate() error {
	backend := strings.ToLower(c.Store.Backend)
	known := false
	for _, b := range knowledge.Backends {
		if b == backend {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("store.backend: unknown backend %q (supported: %s)", c.Store.Backend, strings.Join(knowledge.Backends, ", "))
	}
	c.Store.Backend = backend

	if c.Store.Path != "" && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path: must not be blank")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: must be console or json, got %q", c.Log.Format)
	}

	return nil
}

// StorePath returns the configured store path, or the backend's default
// when none is set.
func (c *Config) StorePath() string {
	if c.Store.Path == "" {
		return knowledge.DefaultPathFor(c.Store.Backend)
	}
	return c.Store.Path
}

// StoreOptions converts the store settings for knowledge.Open.
func (c *Config) StoreOptions() knowledge.Options {
	return knowledge.Options{Backend: c.Store.Backend, Path: c.StorePath()}
}

// GetDefaultConfigPath returns the path to ~/.config/speakeasy/config.yaml
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "speakeasy", "config.yaml"), nil
}
