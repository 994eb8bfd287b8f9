package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shipsec/reconcraft/appconfig"
	"github.com/shipsec/reconcraft/client"
)

// configPath resolves the user config file location, honoring
// RECONCRAFT_CONFIG.
func configPath() (string, error) {
	if path := os.Getenv("RECONCRAFT_CONFIG"); path != "" {
		return path, nil
	}
	return appconfig.DefaultPath()
}

// loadConfig reads the user config, honoring RECONCRAFT_CONFIG and
// RECONCRAFT_API_URL overrides.
func loadConfig() (appconfig.Config, error) {
	path, err := configPath()
	if err != nil {
		return appconfig.Config{}, err
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		return appconfig.Config{}, err
	}
	if url := os.Getenv("RECONCRAFT_API_URL"); url != "" {
		cfg.BaseURL = url
	}
	return cfg, nil
}

// newClient builds the API client from the user config with the
// keyring-backed token store.
func newClient() (*client.Client, appconfig.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, appconfig.Config{}, err
	}
	c := client.New(cfg.BaseURL,
		client.WithTokenStore(client.NewKeyringStore("reconcraft")),
		client.WithCacheTTL(cfg.CacheTTL),
		client.WithLogger(slog.Default()),
	)
	return c, cfg, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
