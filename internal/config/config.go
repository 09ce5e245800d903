package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds machine-level preferences: where state lives and how the
// app logs. User-facing settings (timer durations, week start) live in the
// storage domains, not here.
type Config struct {
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	LogFile  string `yaml:"log_file"`
}

// DefaultConfig returns default settings rooted in the user config dir.
func DefaultConfig() *Config {
	dir, _ := os.UserConfigDir()
	dbPath, logPath := "", ""
	if dir != "" {
		dbPath = filepath.Join(dir, "focusdo", "focusdo.db")
		logPath = filepath.Join(dir, "focusdo", "focusdo.log")
	}
	return &Config{
		DBPath:   getEnv("FOCUSDO_DB", dbPath),
		LogLevel: getEnv("FOCUSDO_LOG_LEVEL", "info"),
		LogFile:  getEnv("FOCUSDO_LOG_FILE", logPath),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (*Config, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "focusdo", "config.yaml"))
}

// LoadFrom reads the config at path, layering it over the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to ~/.config/focusdo/config.yaml.
func (c *Config) Save() error {
	dir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(dir, "focusdo", "config.yaml"))
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
