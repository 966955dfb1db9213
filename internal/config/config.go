// Package config loads and validates the GoFresh YAML configuration.
package config

// Config is everything gofresh reads from its configuration file.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Tracking TrackingConfig `yaml:"tracking" mapstructure:"tracking"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig points gofresh at the MySQL server whose tables it
// tracks. The same connection serves both the tracked schema (catalog
// reads) and the metadata table that persists freshness records.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// TrackingConfig holds the staleness policy.
type TrackingConfig struct {
	// HealthThreshold is the health score (0-100) below which a table is
	// considered stale enough to re-analyze.
	HealthThreshold int `yaml:"health_threshold" mapstructure:"health_threshold"`

	// QueriedOnly restricts staleness reporting to tables that have been
	// queried since their last analysis.
	QueriedOnly bool `yaml:"queried_only" mapstructure:"queried_only"`

	// LockTimeoutSeconds bounds the wait for the per-table advisory lock
	// taken around reconcile-and-persist.
	LockTimeoutSeconds int `yaml:"lock_timeout_seconds" mapstructure:"lock_timeout_seconds"`

	// MetaTable is the table freshness records are persisted in.
	MetaTable string `yaml:"meta_table" mapstructure:"meta_table"`
}

// LoggingConfig selects log destination, encoding and verbosity.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns the values used for keys absent from the file.
// Connection details have no defaults and must be configured.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Tracking: TrackingConfig{
			HealthThreshold:    60,
			QueriedOnly:        false,
			LockTimeoutSeconds: 5,
			MetaTable:          "gofresh_stats_meta",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
