// Package config loads and saves the application configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name inside the config directory.
const FileName = "config.yaml"

// Config is the application configuration. Notification thresholds are
// not here; they live in the settings collection of the data store.
type Config struct {
	Version   int    `yaml:"version"`
	DataDir   string `yaml:"data_dir"`             // JSON document directory
	LogLevel  string `yaml:"log_level"`            // trace, debug, info, warn, error
	LogFile   string `yaml:"log_file,omitempty"`   // empty = console logging
	AuditFile string `yaml:"audit_file,omitempty"` // empty = no audit trail
	User      string `yaml:"user,omitempty"`       // stamped on status changes and audit entries
}

// DefaultConfig returns a config rooted under the given base directory.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		Version:   1,
		DataDir:   filepath.Join(baseDir, "data"),
		LogLevel:  "info",
		AuditFile: filepath.Join(baseDir, "audit.jsonl"),
	}
}

// DefaultBaseDir is the per-user application directory.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pm"
	}
	return filepath.Join(home, ".pm")
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrInit loads the config at path, writing and returning the
// default when the file does not exist yet.
func LoadOrInit(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig(filepath.Dir(path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	switch c.LogLevel {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}
