// Package config loads the server configuration from the environment
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/joho/godotenv"
)

// Backend selects the pair group storage implementation
type Backend string

const (
	// FileSystemBackend stores one JSON file per record
	FileSystemBackend Backend = "filesystem"
	// BadgerBackend stores records in an embedded BadgerDB
	BadgerBackend Backend = "badger"
)

// Config is the configuration of the pair group server
type Config struct {
	DataDir  string
	Backend  Backend
	Port     string
	LogLevel logger.Level
}

// Load reads a .env file from the working directory when present, then the
// environment. Real environment variables take precedence over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() (*Config, error) {
	cfg := &Config{
		DataDir: getEnv("PAIRSTORE_DATA_DIR", "./data"),
		Backend: Backend(strings.ToLower(getEnv("PAIRSTORE_BACKEND", string(FileSystemBackend)))),
		Port:    getEnv("PORT", "8080"),
	}

	switch cfg.Backend {
	case FileSystemBackend, BadgerBackend:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	level, err := logger.ParseLevel(getEnv("LOG_LEVEL", string(logger.InfoLevel)))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
