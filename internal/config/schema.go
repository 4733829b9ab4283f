package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int           `yaml:"version"`
	Output  OutputConfig  `yaml:"output"`
	Catalog CatalogConfig `yaml:"catalog"`
	Import  ImportConfig  `yaml:"import"`
	Watch   WatchConfig   `yaml:"watch"`
}

// OutputConfig controls where generations are written
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format,omitempty"` // extra export next to infra.json: "yaml" or empty
}

// CatalogConfig holds the generation catalog settings
type CatalogConfig struct {
	Path string `yaml:"path"` // sqlite file, ":memory:" disables persistence
}

// ImportConfig describes the infrastructure service receiving generated documents
type ImportConfig struct {
	BaseURL      string   `yaml:"base_url,omitempty"`
	Token        string   `yaml:"token,omitempty"`
	GenerateData bool     `yaml:"generate_data"`
	Timeout      Duration `yaml:"timeout"`
}

// Enabled reports whether an import target is configured.
func (c ImportConfig) Enabled() bool {
	return c.BaseURL != ""
}

// WatchConfig controls the script watcher
type WatchConfig struct {
	Dir      string   `yaml:"dir,omitempty"`
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
