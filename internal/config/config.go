// Package config loads and validates server configuration from CLI
// flags and environment variables (spec §6.3, §7 ConfigurationError).
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"plinko-pir/internal/pirerr"
)

const (
	DefaultPort                = 8080
	DefaultDatabasePath        = "data/database.bin"
	DefaultDatabaseWaitTimeout = 60 * time.Second
	DefaultLogLevel            = "INFO"

	// deprecatedDatabasePathEnv is the teacher's own legacy env var
	// name for the database path (plinko-pir-server/config.go);
	// accepted as a fallback with a logged deprecation notice rather
	// than dropped outright, the same one-generation compatibility
	// shim the teacher applies to its own predecessor variable.
	deprecatedDatabasePathEnv = "PLINKO_PIR_DATABASE_PATH"
)

var validLogLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true, "CRITICAL": true,
}

// Config holds validated server configuration.
type Config struct {
	Port                int
	DatabasePath        string
	DatabaseWaitTimeout time.Duration
	LogLevel            string

	// DeprecatedPathNotice is set when the legacy database-path env
	// var was used instead of PLINKO_DATABASE_PATH, so the caller can
	// log it once logging is initialised.
	DeprecatedPathNotice string
}

// Overrides carries parsed CLI flag values; a field is considered
// "set" (and therefore takes precedence over env/default, per §6.3
// "command-line flags take precedence") iff its pointer is non-nil.
type Overrides struct {
	Port                *int
	DatabasePath        *string
	DatabaseWaitTimeout *time.Duration
	LogLevel            *string
}

// Load builds a Config from environment variables, then applies CLI
// overrides, then validates. Returns a pirerr.ConfigurationError on
// any invalid value.
func Load(env func(string) string, overrides Overrides) (Config, error) {
	cfg := Config{
		Port:                DefaultPort,
		DatabasePath:        DefaultDatabasePath,
		DatabaseWaitTimeout: DefaultDatabaseWaitTimeout,
		LogLevel:            DefaultLogLevel,
	}

	if v := strings.TrimSpace(env("PLINKO_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, pirerr.New(pirerr.KindConfigurationError, fmt.Sprintf("invalid PLINKO_PORT %q", v))
		}
		cfg.Port = port
	}

	if v := strings.TrimSpace(env("PLINKO_DATABASE_PATH")); v != "" {
		cfg.DatabasePath = v
	} else if v := strings.TrimSpace(env(deprecatedDatabasePathEnv)); v != "" {
		cfg.DatabasePath = v
		cfg.DeprecatedPathNotice = fmt.Sprintf(
			"deprecated env var %s used for database path; set PLINKO_DATABASE_PATH instead", deprecatedDatabasePathEnv)
	}

	if v := strings.TrimSpace(env("PLINKO_DATABASE_TIMEOUT")); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, pirerr.New(pirerr.KindConfigurationError, fmt.Sprintf("invalid PLINKO_DATABASE_TIMEOUT %q", v))
		}
		cfg.DatabaseWaitTimeout = time.Duration(seconds) * time.Second
	}

	if v := strings.TrimSpace(env("PLINKO_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	if overrides.Port != nil {
		cfg.Port = *overrides.Port
	}
	if overrides.DatabasePath != nil {
		cfg.DatabasePath = *overrides.DatabasePath
	}
	if overrides.DatabaseWaitTimeout != nil {
		cfg.DatabaseWaitTimeout = *overrides.DatabaseWaitTimeout
	}
	if overrides.LogLevel != nil {
		cfg.LogLevel = *overrides.LogLevel
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return pirerr.New(pirerr.KindConfigurationError, fmt.Sprintf("invalid port: %d", c.Port))
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return pirerr.New(pirerr.KindConfigurationError, "database path cannot be empty")
	}
	if c.DatabaseWaitTimeout < 0 {
		return pirerr.New(pirerr.KindConfigurationError, fmt.Sprintf("invalid database timeout: %v", c.DatabaseWaitTimeout))
	}
	if !validLogLevels[strings.ToUpper(c.LogLevel)] {
		return pirerr.New(pirerr.KindConfigurationError, fmt.Sprintf("invalid log level: %s", c.LogLevel))
	}
	return nil
}

// ListenAddress returns the address the server should bind: all
// interfaces, per spec §6.3 ("The server binds 0.0.0.0:<port>").
func (c Config) ListenAddress() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
