// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort         = 8080
	defaultServerHost         = "0.0.0.0"
	defaultReadTimeout        = 30 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultDatabasePath       = "./data/relisten.db"
	defaultMigrationsPath     = "file://./migrations"
	defaultLogLevel           = "info"
	defaultLogPretty          = false
	defaultSampleInterval     = 100 * time.Millisecond
	defaultRefreshInterval    = 16 * time.Millisecond
	defaultCleanupInterval    = 60
	defaultGracePeriodSeconds = 300
	envPrefix                 = "RELISTEN"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Replay   ReplayConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// ReplayConfig holds replay engine configuration
type ReplayConfig struct {
	// SampleInterval bounds how often host position updates are forwarded
	// through the replay pipeline
	SampleInterval time.Duration
	// RefreshInterval paces the driver tick that flushes throttled samples
	RefreshInterval time.Duration
	// CleanupInterval is how often idle sessions are checked, in seconds
	CleanupInterval int
	// GracePeriodSeconds is how long a paused session may sit idle before it
	// is torn down
	GracePeriodSeconds int
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/relisten")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("replay.sampleinterval", defaultSampleInterval)
	v.SetDefault("replay.refreshinterval", defaultRefreshInterval)
	v.SetDefault("replay.cleanupinterval", defaultCleanupInterval)
	v.SetDefault("replay.graceperiodseconds", defaultGracePeriodSeconds)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	valid := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Replay.SampleInterval <= 0 {
		return fmt.Errorf("invalid sample interval: %v (must be > 0)", c.Replay.SampleInterval)
	}
	if c.Replay.RefreshInterval <= 0 {
		return fmt.Errorf("invalid refresh interval: %v (must be > 0)", c.Replay.RefreshInterval)
	}
	if c.Replay.RefreshInterval > c.Replay.SampleInterval {
		return fmt.Errorf("refresh interval %v must not exceed sample interval %v",
			c.Replay.RefreshInterval, c.Replay.SampleInterval)
	}
	if c.Replay.CleanupInterval <= 0 {
		return fmt.Errorf("invalid cleanup interval: %d (must be > 0)", c.Replay.CleanupInterval)
	}
	if c.Replay.GracePeriodSeconds <= 0 {
		return fmt.Errorf("invalid grace period: %d (must be > 0)", c.Replay.GracePeriodSeconds)
	}

	return nil
}
