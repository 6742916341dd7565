// Package config loads and saves the user configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the persisted user configuration.
type Config struct {
	ReplayDir          string   `toml:"replay_dir"`
	DBPath             string   `toml:"db_path"`
	MyNames            []string `toml:"my_names"`
	AutoDetectSelf     bool     `toml:"auto_detect_self"`
	ImportParallelism  int      `toml:"import_parallelism"`
	WatchSettleSeconds int      `toml:"watch_settle_seconds"`
	NotifyOnNewGame    bool     `toml:"notify_on_new_game"`
	NtfyTopic          string   `toml:"ntfy_topic"`
	LogLevel           string   `toml:"log_level"`
	LogFormat          string   `toml:"log_format"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		DBPath:             filepath.Join(defaultDir(), "starrecord.db"),
		AutoDetectSelf:     true,
		ImportParallelism:  4,
		WatchSettleSeconds: 3,
		NotifyOnNewGame:    true,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// DefaultPath returns the standard location of the config file.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.toml")
}

// Load reads the config file at path, filling missing keys with
// defaults. A missing file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ImportParallelism < 1 {
		cfg.ImportParallelism = 1
	}
	return cfg, nil
}

// Save writes the config file, creating its directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// AddMyName appends a self name if not already present. Reports whether
// the config changed.
func (c *Config) AddMyName(name string) bool {
	for _, existing := range c.MyNames {
		if existing == name {
			return false
		}
	}
	c.MyNames = append(c.MyNames, name)
	return true
}

func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "starrecord")
}
