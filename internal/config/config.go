// Package config loads the storysync configuration file
// (~/.config/storysync/config.json) with an embedded sample written on
// first run.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	_ "embed"
)

var configOnce sync.Once

var globalConfig *Config

var customConfigPath string // Custom config path set via --config flag

//go:embed config.sample.json
var sampleConfig []byte

const (
	ConfigDirName  = "storysync"
	ConfigFileName = "config.json"
	configDirPerm  = 0755
	configFilePerm = 0644
)

// Config represents the application configuration.
type Config struct {
	// RemoteURL is the PostgREST endpoint root, e.g.
	// "https://xyz.supabase.co/rest/v1".
	RemoteURL string `json:"remote_url" validate:"omitempty,url"`

	// RemoteAnonKey is the project API key sent on every request. The
	// user access token is resolved separately (keyring or environment).
	RemoteAnonKey string `json:"remote_anon_key,omitempty"`

	// UserID is the authenticated identity records are synced under.
	// Usually written by `storysync login`; the STORYSYNC_USER_ID
	// environment variable overrides it.
	UserID string `json:"user_id,omitempty"`

	// DatabasePath is the local SQLite database file. Supports ~.
	DatabasePath string `json:"database_path" validate:"required"`

	Sync *SyncConfig `json:"sync,omitempty"`
}

// SyncConfig controls the scheduler.
type SyncConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds,omitempty" validate:"omitempty,min=5"`
	PushOnExit      bool `json:"push_on_exit"`
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Sync != nil && c.Sync.Enabled && c.RemoteURL == "" {
		return fmt.Errorf("sync is enabled but remote_url is not configured")
	}
	return nil
}

// ExpandedDatabasePath returns DatabasePath with a leading ~ expanded.
func (c *Config) ExpandedDatabasePath() string {
	return expandHome(c.DatabasePath)
}

// SetCustomConfigPath sets a custom config path to use instead of the
// default user config directory. Must be called before the first
// GetConfig call.
func SetCustomConfigPath(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		customConfigPath = filepath.Join(path, ConfigFileName)
	} else {
		customConfigPath = path
	}
}

// GetConfig returns the process-wide configuration, loading it on first
// use. A missing config file is created from the embedded sample.
func GetConfig() *Config {
	configOnce.Do(func() {
		cfg, err := load()
		if err != nil {
			log.Fatal(err)
		}
		globalConfig = cfg
	})
	return globalConfig
}

func load() (*Config, error) {
	// Pick up STORYSYNC_* overrides from a .env file if present.
	_ = godotenv.Load()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := writeSample(path); err != nil {
			return nil, err
		}
		data = sampleConfig
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and validates raw config JSON.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ConfigPath returns the effective config file path.
func ConfigPath() (string, error) {
	if customConfigPath != "" {
		return customConfigPath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName), nil
}

// Save writes the configuration back to its file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), configFilePerm); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func writeSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, sampleConfig, configFilePerm); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}
	log.Printf("Created sample config at %s", path)
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
