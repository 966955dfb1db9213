package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "pass",
			Database: "testdb",
		},
		Tracking: TrackingConfig{HealthThreshold: 60},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() = %v, expected nil", err)
	}
}

func TestValidate_RejectedFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"port zero", func(c *Config) { c.Database.Port = 0 }, "database.port"},
		{"port out of range", func(c *Config) { c.Database.Port = 99999 }, "database.port"},
		{"missing user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"missing database name", func(c *Config) { c.Database.Database = "" }, "database.database"},
		{"unknown tls mode", func(c *Config) { c.Database.TLS = "maybe" }, "database.tls"},
		{"negative max connections", func(c *Config) { c.Database.MaxConnections = -1 }, "database.max_connections"},
		{"negative max idle connections", func(c *Config) { c.Database.MaxIdleConnections = -1 }, "database.max_idle_connections"},
		{"health threshold above 100", func(c *Config) { c.Tracking.HealthThreshold = 150 }, "tracking.health_threshold"},
		{"health threshold negative", func(c *Config) { c.Tracking.HealthThreshold = -5 }, "tracking.health_threshold"},
		{"negative lock timeout", func(c *Config) { c.Tracking.LockTimeoutSeconds = -1 }, "tracking.lock_timeout_seconds"},
		{"meta table with injection", func(c *Config) { c.Tracking.MetaTable = "stats; DROP TABLE stats--" }, "tracking.meta_table"},
		{"meta table with dash", func(c *Config) { c.Tracking.MetaTable = "bad-name" }, "tracking.meta_table"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should mention %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_CollectsEveryError(t *testing.T) {
	cfg := &Config{
		Tracking: TrackingConfig{HealthThreshold: -5},
		Logging:  LoggingConfig{Level: "loud"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted an empty config")
	}

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Validate() returned %T, expected ValidationErrors", err)
	}
	if len(errs) != 6 {
		t.Errorf("got %d errors, expected 6: %v", len(errs), errs)
	}

	for _, field := range []string{
		"database.host",
		"database.port",
		"database.user",
		"database.database",
		"tracking.health_threshold",
		"logging.level",
	} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error should mention %q, got: %v", field, err)
		}
	}
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Field: "database.host", Message: "host is required"}
	if err.Error() != "database.host: host is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationErrors_Format(t *testing.T) {
	errs := ValidationErrors{
		{Field: "database.host", Message: "host is required"},
		{Field: "logging.format", Message: "format must be 'json' or 'text'"},
	}

	got := errs.Error()
	if !strings.HasPrefix(got, "validation failed:") {
		t.Errorf("Error() = %q, expected a 'validation failed:' prefix", got)
	}
	if !strings.Contains(got, "\n  - database.host: host is required") {
		t.Errorf("Error() = %q, expected bulleted field errors", got)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render as an empty string")
	}
}
