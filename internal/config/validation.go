package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dbsmedya/gofresh/internal/sqlutil"
)

// ValidationError reports a single rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every rejected value from a Validate pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("validation failed:")
	for _, err := range e {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *ValidationErrors) add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// Validate rejects configurations that cannot produce a working run. It
// reports every problem at once, as ValidationErrors, so a bad file can be
// fixed in one pass.
func (c *Config) Validate() error {
	var errs ValidationErrors

	c.validateDatabase(&errs)
	c.validateTracking(&errs)
	c.validateLogging(&errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateDatabase(errs *ValidationErrors) {
	db := &c.Database

	if db.Host == "" {
		errs.add("database.host", "host is required")
	}
	if db.Port <= 0 || db.Port > 65535 {
		errs.add("database.port", "port must be between 1 and 65535")
	}
	if db.User == "" {
		errs.add("database.user", "user is required")
	}
	if db.Database == "" {
		errs.add("database.database", "database name is required")
	}
	if !slices.Contains([]string{"disable", "preferred", "required", ""}, db.TLS) {
		errs.add("database.tls", "tls must be 'disable', 'preferred', or 'required'")
	}
	if db.MaxConnections < 0 {
		errs.add("database.max_connections", "max_connections cannot be negative")
	}
	if db.MaxIdleConnections < 0 {
		errs.add("database.max_idle_connections", "max_idle_connections cannot be negative")
	}
}

func (c *Config) validateTracking(errs *ValidationErrors) {
	if c.Tracking.HealthThreshold < 0 || c.Tracking.HealthThreshold > 100 {
		errs.add("tracking.health_threshold", "health_threshold must be between 0 and 100")
	}
	if c.Tracking.LockTimeoutSeconds < 0 {
		errs.add("tracking.lock_timeout_seconds", "lock_timeout_seconds cannot be negative")
	}
	if c.Tracking.MetaTable != "" && !sqlutil.IsValidIdentifier(c.Tracking.MetaTable) {
		errs.add("tracking.meta_table", "meta_table must contain only alphanumeric characters and underscores")
	}
}

func (c *Config) validateLogging(errs *ValidationErrors) {
	if !slices.Contains([]string{"debug", "info", "warn", "error", ""}, c.Logging.Level) {
		errs.add("logging.level", "level must be 'debug', 'info', 'warn', or 'error'")
	}
	if !slices.Contains([]string{"json", "text", ""}, c.Logging.Format) {
		errs.add("logging.format", "format must be 'json' or 'text'")
	}
}
