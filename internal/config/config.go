package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Connect  ConnectConfig  `yaml:"connect"`
	Versions VersionsConfig `yaml:"versions"`
	Storage  StorageConfig  `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings. An empty URL means
// in-memory persistence only.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SyncConfig tunes draft synchronization. These are product-tuned values,
// deliberately configurable rather than hard-coded.
type SyncConfig struct {
	DebounceMS int `yaml:"debounce_ms"` // quiet period after the last mutation (default: 800)
	MaxWaitMS  int `yaml:"max_wait_ms"` // flush ceiling under continuous mutation (default: 300000)
}

// Debounce returns the quiet period as a duration, zero when unset.
func (c SyncConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// MaxWait returns the flush ceiling as a duration, zero when unset.
func (c SyncConfig) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitMS) * time.Millisecond
}

// ConnectConfig tunes the drag-connection preview.
type ConnectConfig struct {
	Radius float64 `yaml:"radius"` // proximity search radius in canvas units (default: 500)
}

// VersionsConfig tunes checkpoint retention.
type VersionsConfig struct {
	RetentionHours int `yaml:"retention_hours"` // auto-checkpoint lifetime (default: 168)
}

// Retention returns the checkpoint lifetime as a duration, zero when unset.
func (c VersionsConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{Dir: "data/uploads"},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
// ${VAR} references in the database URL are expanded from the
// environment, so credentials can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Database.URL = os.ExpandEnv(cfg.Database.URL)
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}
	return cfg, nil
}
