// Package config provides configuration management for the Shotlog agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Default values
	DefaultPort                 = 8686
	DefaultLogLevel             = "info"
	DefaultDataDir              = ".shotlog"
	DefaultExportRate           = 60.0
	DefaultTelemetryConcurrency = 4

	// Environment variable names
	EnvPort                 = "SHOTLOG_PORT"
	EnvLogLevel             = "SHOTLOG_LOG_LEVEL"
	EnvDataDir              = "SHOTLOG_DATA_DIR"
	EnvMediaDir             = "SHOTLOG_MEDIA_DIR"
	EnvHeadless             = "SHOTLOG_HEADLESS"
	EnvTelemetryConcurrency = "SHOTLOG_TELEMETRY_CONCURRENCY"

	// Database filename
	DBFilename = "shotlog.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	MediaDir() string
	Headless() bool
	ExportRate() float64
	TelemetryConcurrency() int
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port                 int
	logLevel             string
	dataDir              string
	mediaDir             string
	headless             bool
	telemetryConcurrency int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:                 DefaultPort,
		logLevel:             DefaultLogLevel,
		dataDir:              defaultDataDir(),
		telemetryConcurrency: DefaultTelemetryConcurrency,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.mediaDir = os.Getenv(EnvMediaDir)

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if tc := os.Getenv(EnvTelemetryConcurrency); tc != "" {
		n, err := strconv.Atoi(tc)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvTelemetryConcurrency, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("invalid %s: must be at least 1", EnvTelemetryConcurrency)
		}
		cfg.telemetryConcurrency = n
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// MediaDir returns the root directory playback is allowed to serve from.
// Empty disables the playback endpoints.
func (c *EnvConfig) MediaDir() string {
	return c.mediaDir
}

// Headless reports whether the tray UI should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// ExportRate returns the record-side frame rate for export documents
func (c *EnvConfig) ExportRate() float64 {
	return DefaultExportRate
}

// TelemetryConcurrency returns the worker count for telemetry extraction
func (c *EnvConfig) TelemetryConcurrency() int {
	return c.telemetryConcurrency
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
