package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gofresh.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db01.internal
  port: 3306
  user: gofresh
  password: s3cret!
  database: shop
  tls: disable
  max_connections: 20
  max_idle_connections: 8

tracking:
  health_threshold: 75
  queried_only: true
  lock_timeout_seconds: 10
  meta_table: stats_bookkeeping

logging:
  level: debug
  format: text
  output: stdout
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Host != "db01.internal" {
		t.Errorf("Database.Host = %q, expected %q", cfg.Database.Host, "db01.internal")
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, expected 3306", cfg.Database.Port)
	}
	if cfg.Database.User != "gofresh" {
		t.Errorf("Database.User = %q, expected %q", cfg.Database.User, "gofresh")
	}
	if cfg.Database.TLS != "disable" {
		t.Errorf("Database.TLS = %q, expected %q", cfg.Database.TLS, "disable")
	}
	if cfg.Database.MaxConnections != 20 {
		t.Errorf("Database.MaxConnections = %d, expected 20", cfg.Database.MaxConnections)
	}
	if cfg.Tracking.HealthThreshold != 75 {
		t.Errorf("Tracking.HealthThreshold = %d, expected 75", cfg.Tracking.HealthThreshold)
	}
	if !cfg.Tracking.QueriedOnly {
		t.Error("Tracking.QueriedOnly should be true")
	}
	if cfg.Tracking.LockTimeoutSeconds != 10 {
		t.Errorf("Tracking.LockTimeoutSeconds = %d, expected 10", cfg.Tracking.LockTimeoutSeconds)
	}
	if cfg.Tracking.MetaTable != "stats_bookkeeping" {
		t.Errorf("Tracking.MetaTable = %q, expected %q", cfg.Tracking.MetaTable, "stats_bookkeeping")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, expected %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db01.internal
  user: gofresh
  database: shop
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, expected default 3306", cfg.Database.Port)
	}
	if cfg.Tracking.HealthThreshold != 60 {
		t.Errorf("Tracking.HealthThreshold = %d, expected default 60", cfg.Tracking.HealthThreshold)
	}
	if cfg.Tracking.MetaTable != "gofresh_stats_meta" {
		t.Errorf("Tracking.MetaTable = %q, expected default %q", cfg.Tracking.MetaTable, "gofresh_stats_meta")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, expected default %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_ExpandsEnvironmentReferences(t *testing.T) {
	t.Setenv("GOFRESH_DB_HOST", "stats-replica.internal")
	t.Setenv("GOFRESH_DB_USER", "stats_ro")
	t.Setenv("GOFRESH_DB_PASS", "hunter2")

	path := writeConfig(t, `
database:
  host: ${GOFRESH_DB_HOST}
  port: 3306
  user: ${GOFRESH_DB_USER}
  password: ${GOFRESH_DB_PASS}
  database: shop
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Host != "stats-replica.internal" {
		t.Errorf("Database.Host = %q, expected %q", cfg.Database.Host, "stats-replica.internal")
	}
	if cfg.Database.User != "stats_ro" {
		t.Errorf("Database.User = %q, expected %q", cfg.Database.User, "stats_ro")
	}
	if cfg.Database.Password != "hunter2" {
		t.Errorf("Database.Password = %q, expected %q", cfg.Database.Password, "hunter2")
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() should fail for a non-existent file")
	}
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	v.Set("database.host", "db.internal")
	v.Set("tracking.health_threshold", 40)

	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatalf("LoadFromViper() failed: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, expected %q", cfg.Database.Host, "db.internal")
	}
	if cfg.Tracking.HealthThreshold != 40 {
		t.Errorf("Tracking.HealthThreshold = %d, expected 40", cfg.Tracking.HealthThreshold)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, expected default 3306", cfg.Database.Port)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("STATS_HOST", "db-replica.internal")

	tests := []struct {
		input    string
		expected string
	}{
		{"${STATS_HOST}", "db-replica.internal"},
		{"$STATS_HOST", "db-replica.internal"},
		{"tcp(${STATS_HOST}:3306)", "tcp(db-replica.internal:3306)"},
		{"${NONEXISTENT_VAR}", "${NONEXISTENT_VAR}"},
		{"$NONEXISTENT_VAR", "$NONEXISTENT_VAR"},
		{"plain-value", "plain-value"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandEnvVar(tt.input); got != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("debug", "text", 80)

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, expected %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, expected %q", cfg.Logging.Format, "text")
	}
	if cfg.Tracking.HealthThreshold != 80 {
		t.Errorf("Tracking.HealthThreshold = %d, expected 80", cfg.Tracking.HealthThreshold)
	}
}

func TestApplyOverrides_ZeroValuesKeepConfig(t *testing.T) {
	cfg := &Config{
		Logging:  LoggingConfig{Level: "warn", Format: "json"},
		Tracking: TrackingConfig{HealthThreshold: 70},
	}

	cfg.ApplyOverrides("", "", 0)

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, expected %q", cfg.Logging.Level, "warn")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, expected %q", cfg.Logging.Format, "json")
	}
	if cfg.Tracking.HealthThreshold != 70 {
		t.Errorf("Tracking.HealthThreshold = %d, expected 70", cfg.Tracking.HealthThreshold)
	}
}
