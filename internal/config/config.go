// Package config loads the lostfound TOML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Server configures the HTTP listener.
type Server struct {
	Addr              string `toml:"addr"`
	ShutdownTimeout   int    `toml:"shutdown_timeout"`
	EvaluationTimeout int    `toml:"evaluation_timeout"`
	MaxImageBytes     int64  `toml:"max_image_bytes"`
	MaxImageDimension int    `toml:"max_image_dimension"`
}

// Database configures the SQLite file.
type Database struct {
	Path string `toml:"path"`
}

// Logging configures log output.
type Logging struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Matching configures the matching engine. The acceptance threshold and
// weights are fixed and not configurable.
type Matching struct {
	Workers              int `toml:"workers"`
	StoreTimeoutSeconds  int `toml:"store_timeout_seconds"`
	NotifyTimeoutSeconds int `toml:"notify_timeout_seconds"`
}

// Notifications configures ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	BaseURL        string `toml:"base_url"`
}

// Config is the full configuration.
type Config struct {
	Server        Server        `toml:"server"`
	Database      Database      `toml:"database"`
	Logging       Logging       `toml:"logging"`
	Matching      Matching      `toml:"matching"`
	Notifications Notifications `toml:"notifications"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8080",
			ShutdownTimeout:   10,
			EvaluationTimeout: 15,
			MaxImageBytes:     5 << 20,
			MaxImageDimension: 1024,
		},
		Database: Database{
			Path: "lostfound.sqlite3",
		},
		Logging: Logging{
			Level: "info",
		},
		Matching: Matching{
			Workers:              4,
			StoreTimeoutSeconds:  5,
			NotifyTimeoutSeconds: 10,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
	}
}

// Load reads the TOML file at path over Default and validates the result.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.BaseURL = strings.TrimRight(strings.TrimSpace(c.Notifications.BaseURL), "/")
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must be set"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.EvaluationTimeout <= 0 {
		errs = append(errs, errors.New("server.evaluation_timeout must be positive"))
	}
	if c.Server.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("server.max_image_bytes must be positive"))
	}
	if c.Server.MaxImageDimension <= 0 {
		errs = append(errs, errors.New("server.max_image_dimension must be positive"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must be set"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Matching.Workers <= 0 {
		errs = append(errs, errors.New("matching.workers must be positive"))
	}
	if c.Matching.StoreTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("matching.store_timeout_seconds must be positive"))
	}
	if c.Matching.NotifyTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("matching.notify_timeout_seconds must be positive"))
	}
	if c.Notifications.RequestTimeout <= 0 {
		errs = append(errs, errors.New("notifications.request_timeout must be positive"))
	}
	return errors.Join(errs...)
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
}

// StoreTimeout returns the per-call store timeout of the matching engine.
func (m Matching) StoreTimeout() time.Duration {
	return time.Duration(m.StoreTimeoutSeconds) * time.Second
}

// NotifyTimeout returns the per-notification delivery timeout.
func (m Matching) NotifyTimeout() time.Duration {
	return time.Duration(m.NotifyTimeoutSeconds) * time.Second
}
