package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, expected 3306", cfg.Database.Port)
	}
	if cfg.Database.TLS != "preferred" {
		t.Errorf("Database.TLS = %q, expected %q", cfg.Database.TLS, "preferred")
	}
	if cfg.Database.MaxConnections != 10 {
		t.Errorf("Database.MaxConnections = %d, expected 10", cfg.Database.MaxConnections)
	}
	if cfg.Database.MaxIdleConnections != 5 {
		t.Errorf("Database.MaxIdleConnections = %d, expected 5", cfg.Database.MaxIdleConnections)
	}

	if cfg.Tracking.HealthThreshold != 60 {
		t.Errorf("Tracking.HealthThreshold = %d, expected 60", cfg.Tracking.HealthThreshold)
	}
	if cfg.Tracking.QueriedOnly {
		t.Error("Tracking.QueriedOnly should default to false")
	}
	if cfg.Tracking.LockTimeoutSeconds != 5 {
		t.Errorf("Tracking.LockTimeoutSeconds = %d, expected 5", cfg.Tracking.LockTimeoutSeconds)
	}
	if cfg.Tracking.MetaTable != "gofresh_stats_meta" {
		t.Errorf("Tracking.MetaTable = %q, expected %q", cfg.Tracking.MetaTable, "gofresh_stats_meta")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, expected %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, expected %q", cfg.Logging.Format, "json")
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Logging.Output = %q, expected %q", cfg.Logging.Output, "stdout")
	}

	if err := cfg.Validate(); err == nil {
		t.Error("defaults alone should not validate, connection details are required")
	}
}
