// Package config loads izposoja settings from the environment, an optional
// .env file and command-line flags. Flags override the environment, which
// overrides the defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/izposoja/internal/model"
)

// Defaults.
const (
	DefaultDBPath          = "izposoja.sqlite3"
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds the settings shared by the server and the report CLI.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string

	LogLevel  slog.Level
	LogFormat string

	ShutdownTimeout time.Duration

	// Items with integrity below this are flagged critical.
	CriticalIntegrity int
}

// Load reads an optional .env file from the working directory and then the
// IZPOSOJA_* environment variables.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return FromEnv()
}

// LoadDotEnv loads path into the environment. A missing file is not an error
// and variables already set are left alone.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from defaults and IZPOSOJA_* environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:  getEnvDefault("IZPOSOJA_DB", DefaultDBPath),
		Addr:    getEnvDefault("IZPOSOJA_ADDR", DefaultAddr),
		LogPath: os.Getenv("IZPOSOJA_LOG"),
	}
	var err error

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("IZPOSOJA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("IZPOSOJA_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("IZPOSOJA_LOG_FORMAT", "text")

	cfg.ShutdownTimeout, err = getEnvDuration("IZPOSOJA_SHUTDOWN_TIMEOUT", DefaultShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("IZPOSOJA_SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.CriticalIntegrity, err = getEnvInt("IZPOSOJA_CRITICAL_INTEGRITY", model.DefaultCriticalIntegrity)
	if err != nil {
		return nil, fmt.Errorf("IZPOSOJA_CRITICAL_INTEGRITY: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that can come from either flags or the environment.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q, allowed: text, json", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if !model.ValidIntegrity(c.CriticalIntegrity) {
		return fmt.Errorf("critical integrity must be between %d and %d, got %d",
			model.MinIntegrity, model.MaxIntegrity, c.CriticalIntegrity)
	}
	return nil
}

// RegisterStorageFlags binds the database and log file flags, defaulting to the current values.
func (c *Config) RegisterStorageFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.DBPath, "db", c.DBPath, "")
	fs.StringVar(&c.DBPath, "d", c.DBPath, "")

	fs.StringVar(&c.LogPath, "log", c.LogPath, "")
	fs.StringVar(&c.LogPath, "l", c.LogPath, "")
}

// RegisterServerFlags binds every server flag.
func (c *Config) RegisterServerFlags(fs *flag.FlagSet) {
	c.RegisterStorageFlags(fs)

	fs.StringVar(&c.Addr, "addr", c.Addr, "")
	fs.StringVar(&c.Addr, "a", c.Addr, "")

	fs.IntVar(&c.CriticalIntegrity, "critical", c.CriticalIntegrity, "")
}

func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use Go syntax: 5s, 1m)", val)
	}
	return d, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid level %q, allowed: debug, info, warn, error", level)
	}
}
