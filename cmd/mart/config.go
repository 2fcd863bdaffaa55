// ABOUTME: config.go provides configuration file management for the mart CLI.
// ABOUTME: Supports loading, saving, and environment variable overrides.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config represents the mart CLI configuration.
type Config struct {
	Server  string `json:"server"`   // backend base URL, e.g. http://localhost:8000/api
	CredsDB string `json:"creds_db"` // path to the credential SQLite db
	Email   string `json:"email"`    // last logged-in email, for prompts
}

// ConfigPath is a function that returns the path to the mart config
// file. It can be overridden in tests.
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".dailymart", "config.json")
	}
	return filepath.Join(home, ".dailymart", "config.json")
}

// ConfigDir returns the directory containing the config file.
func ConfigDir() string {
	return filepath.Dir(ConfigPath())
}

// LoadConfig loads config from file and applies environment variable
// overrides. A .env file in the working directory is honored first.
// Returns default config if the file doesn't exist.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("config file corrupted: %w", jsonErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.CredsDB == "" {
		cfg.CredsDB = filepath.Join(ConfigDir(), "credentials.db")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if server := os.Getenv("DAILYMART_SERVER"); server != "" {
		cfg.Server = server
	}
	if db := os.Getenv("DAILYMART_CREDS_DB"); db != "" {
		cfg.CredsDB = db
	}
	if email := os.Getenv("DAILYMART_EMAIL"); email != "" {
		cfg.Email = email
	}
}

// SaveConfig writes config to file.
func SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
