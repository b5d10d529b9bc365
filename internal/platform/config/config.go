// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Environment variable names.
const (
	EnvHost            = "HOST"
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvDocsPath        = "DOCS_PATH"
)

// Config holds the HTTP service settings.
type Config struct {
	Host            string
	Port            int
	LogLevel        string
	ShutdownTimeout time.Duration
	// DocsPath serves the API reference UI; empty disables it.
	DocsPath string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:            8080,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		DocsPath:        "/api-docs",
	}
}

// Addr is the listen address for http.Server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the settings that have a restricted range.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and builds a Config from it. Missing files are
// skipped and variables already set in the environment are never overridden.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables over Default.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.Host = os.Getenv(EnvHost)
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := os.LookupEnv(EnvDocsPath); ok {
		cfg.DocsPath = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
