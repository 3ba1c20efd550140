package config

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Test server defaults
	if cfg.Server.Port != defaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Server.Host != defaultServerHost {
		t.Errorf("Server.Host = %s, want %s", cfg.Server.Host, defaultServerHost)
	}

	// Test database defaults
	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, defaultDatabasePath)
	}
	if cfg.Database.MigrationsPath != defaultMigrationsPath {
		t.Errorf("Database.MigrationsPath = %s, want %s", cfg.Database.MigrationsPath, defaultMigrationsPath)
	}

	// Test logging defaults
	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("Logging.Level = %s, want %s", cfg.Logging.Level, defaultLogLevel)
	}
	if cfg.Logging.Pretty != defaultLogPretty {
		t.Errorf("Logging.Pretty = %v, want %v", cfg.Logging.Pretty, defaultLogPretty)
	}

	// Test replay defaults
	if cfg.Replay.SampleInterval != defaultSampleInterval {
		t.Errorf("Replay.SampleInterval = %v, want %v", cfg.Replay.SampleInterval, defaultSampleInterval)
	}
	if cfg.Replay.RefreshInterval != defaultRefreshInterval {
		t.Errorf("Replay.RefreshInterval = %v, want %v", cfg.Replay.RefreshInterval, defaultRefreshInterval)
	}
	if cfg.Replay.CleanupInterval != defaultCleanupInterval {
		t.Errorf("Replay.CleanupInterval = %d, want %d", cfg.Replay.CleanupInterval, defaultCleanupInterval)
	}
	if cfg.Replay.GracePeriodSeconds != defaultGracePeriodSeconds {
		t.Errorf("Replay.GracePeriodSeconds = %d, want %d", cfg.Replay.GracePeriodSeconds, defaultGracePeriodSeconds)
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:           "./data/relisten.db",
			MigrationsPath: "file://./migrations",
		},
		Logging: LoggingConfig{Level: "info"},
		Replay: ReplayConfig{
			SampleInterval:     100 * time.Millisecond,
			RefreshInterval:    16 * time.Millisecond,
			CleanupInterval:    60,
			GracePeriodSeconds: 300,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, true},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"zero sample interval", func(c *Config) { c.Replay.SampleInterval = 0 }, true},
		{"zero refresh interval", func(c *Config) { c.Replay.RefreshInterval = 0 }, true},
		{"refresh slower than sample", func(c *Config) {
			c.Replay.RefreshInterval = 200 * time.Millisecond
		}, true},
		{"zero cleanup interval", func(c *Config) { c.Replay.CleanupInterval = 0 }, true},
		{"zero grace period", func(c *Config) { c.Replay.GracePeriodSeconds = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
