// Package appconfig holds the explicit application context for the client:
// backend base URL, theme preference, and polling/caching knobs. It is
// loaded from a YAML file and passed to components at startup; there is no
// ambient global state. Theme preference lives here, the bearer token lives
// in the OS keyring, and nothing else is persisted client-side.
package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Theme names a UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Config is the application configuration.
type Config struct {
	BaseURL      string        `yaml:"baseUrl"`
	Theme        Theme         `yaml:"theme"`
	PollInterval time.Duration `yaml:"pollInterval"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		BaseURL:      "http://localhost:8000/api",
		Theme:        ThemeDark,
		PollInterval: 2 * time.Second,
		CacheTTL:     30 * time.Second,
	}
}

// Load reads the config file at path. A missing file yields the defaults so
// a fresh install works without setup; any other failure is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "reconcraft", "config.yaml"), nil
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("config: baseUrl is required")
	}
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("config: unknown theme %q", c.Theme)
	}
	if c.PollInterval <= 0 {
		return errors.New("config: pollInterval must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("config: cacheTtl must be positive")
	}
	return nil
}
