package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a YAML configuration file and resolves ${VAR} references
// against the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper
// instance. Defaults apply to every key the instance does not set.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandEnv(cfg)
	return cfg, nil
}

// expandEnv resolves environment references in the fields where secrets
// and host names typically live.
func expandEnv(cfg *Config) {
	for _, field := range []*string{
		&cfg.Database.Host,
		&cfg.Database.User,
		&cfg.Database.Password,
		&cfg.Database.Database,
		&cfg.Logging.Output,
	} {
		*field = expandEnvVar(*field)
	}
}

// envRef matches ${VAR_NAME} or $VAR_NAME references.
var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVar substitutes ${VAR} and $VAR references. References to
// unset variables are left as written.
func expandEnvVar(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := strings.TrimPrefix(ref, "$")
		name = strings.TrimPrefix(strings.TrimSuffix(name, "}"), "{")
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ref
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration. Only
// non-zero values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, healthThreshold int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if healthThreshold > 0 {
		c.Tracking.HealthThreshold = healthThreshold
	}
}
