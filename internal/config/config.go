// Package config provides configuration management for railgen.
//
// The config file says where generations go, where the run catalog lives and
// which infrastructure service receives imports. Every field has a default, so
// railgen runs without any config file.
//
// Config file locations (priority order):
//  1. $RAILGEN_CONFIG
//  2. ./railgen.yaml
//  3. $XDG_CONFIG_HOME/railgen/config.yaml
//  4. ~/.config/railgen/config.yaml
//  5. /etc/railgen/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvImportToken overrides import.token so the token can stay out of config files.
const EnvImportToken = "RAILGEN_IMPORT_TOKEN"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	defaultOutputDir     = "./generated_infras"
	defaultCatalogPath   = "./railgen.db"
	defaultImportTimeout = 30 * time.Second
	defaultDebounce      = 500 * time.Millisecond
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	// keys absent from the file keep their default values
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Output:  OutputConfig{Dir: defaultOutputDir},
		Catalog: CatalogConfig{Path: defaultCatalogPath},
		Import: ImportConfig{
			GenerateData: true,
			Timeout:      Duration(defaultImportTimeout),
		},
		Watch: WatchConfig{Debounce: Duration(defaultDebounce)},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	if c.Import.Timeout == 0 {
		c.Import.Timeout = Duration(defaultImportTimeout)
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(defaultDebounce)
	}
}

func (c *Config) applyEnv() {
	if token := os.Getenv(EnvImportToken); token != "" {
		c.Import.Token = token
	}
}

// Validate rejects settings railgen cannot act on.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "", "yaml":
	default:
		return fmt.Errorf("%w: output.format %q (want \"yaml\" or empty)", ErrInvalidConfig, c.Output.Format)
	}
	if c.Import.Timeout < 0 {
		return fmt.Errorf("%w: negative import.timeout", ErrInvalidConfig)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: negative watch.debounce", ErrInvalidConfig)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Output: %s, Catalog: %s\n", c.Output.Dir, c.Catalog.Path)
	if c.Import.Enabled() {
		summary += fmt.Sprintf("Import: %s (generate_data=%t, timeout=%s)",
			c.Import.BaseURL, c.Import.GenerateData, c.Import.Timeout.Duration())
	} else {
		summary += "Import: disabled"
	}
	return summary
}
