// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabasePath      string
	CORSOrigins       []string
	NATSURL           string
	NATSSubjectPrefix string
	SessionLifetime   time.Duration
	FinalCourt        int
	FinalGameCount    int
	AutoSeedOnEmpty   bool
	SeedFile          string
	LogLevel          string
	LogFormat         string
}

// Load reads a .env file when present and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabasePath:      getEnv("DATABASE_PATH", "shuttle_league.db"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "league"),
		SeedFile:          getEnv("SEED_FILE", ""),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.SessionLifetime, err = time.ParseDuration(getEnv("SESSION_LIFETIME", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}
	if cfg.FinalCourt, err = positiveInt("FINAL_COURT", getEnv("FINAL_COURT", "1")); err != nil {
		return nil, err
	}
	if cfg.FinalGameCount, err = positiveInt("FINAL_GAME_COUNT", getEnv("FINAL_GAME_COUNT", "12")); err != nil {
		return nil, err
	}
	if cfg.AutoSeedOnEmpty, err = strconv.ParseBool(getEnv("AUTO_SEED_ON_EMPTY", "true")); err != nil {
		return nil, fmt.Errorf("invalid AUTO_SEED_ON_EMPTY: %w", err)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q, want text or json", cfg.LogFormat)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// NewLogger builds the charm logger used as the slog handler.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

// InstallLogger makes the configured logger the slog default.
func (c *Config) InstallLogger(w io.Writer) {
	slog.SetDefault(slog.New(c.NewLogger(w)))
}

func positiveInt(key, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, n)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
