package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetRootFlags restores the persistent flag variables when the test
// finishes, since every test in this package shares them.
func resetRootFlags(t *testing.T) {
	t.Helper()
	origCfg := cfgFile
	origLevel := logLevel
	origFormat := logFormat
	origThreshold := healthThreshold
	t.Cleanup(func() {
		cfgFile = origCfg
		logLevel = origLevel
		logFormat = origFormat
		healthThreshold = origThreshold
	})
}

func TestGetConfigFile(t *testing.T) {
	resetRootFlags(t)

	cfgFile = "deploy/gofresh-prod.yaml"
	assert.Equal(t, "deploy/gofresh-prod.yaml", GetConfigFile())

	cfgFile = "gofresh.yaml"
	assert.Equal(t, "gofresh.yaml", GetConfigFile())
}

func TestGetCLIOverrides(t *testing.T) {
	resetRootFlags(t)

	logLevel = "debug"
	logFormat = "text"
	healthThreshold = 85

	got := GetCLIOverrides()
	assert.Equal(t, CLIOverrides{LogLevel: "debug", LogFormat: "text", HealthThreshold: 85}, got)
}

func TestGetCLIOverrides_UnsetFlagsStayZero(t *testing.T) {
	resetRootFlags(t)

	logLevel = ""
	logFormat = ""
	healthThreshold = 0

	assert.Equal(t, CLIOverrides{}, GetCLIOverrides())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "gofresh", rootCmd.Use)
	assert.Equal(t, Version, rootCmd.Version)
	assert.NotEmpty(t, rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "freshness")
}

func TestRootPersistentFlags(t *testing.T) {
	defaults := []struct {
		name     string
		defValue string
	}{
		{"config", "gofresh.yaml"},
		{"log-level", ""},
		{"log-format", ""},
		{"health-threshold", "0"},
	}

	for _, tt := range defaults {
		f := rootCmd.PersistentFlags().Lookup(tt.name)
		if assert.NotNil(t, f, "flag --%s is not registered", tt.name) {
			assert.Equal(t, tt.defValue, f.DefValue, "flag --%s default", tt.name)
		}
	}

	assert.Equal(t, "c", rootCmd.PersistentFlags().Lookup("config").Shorthand)
}

func TestRootSubcommands(t *testing.T) {
	var names []string
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"check", "list", "purge", "reset", "show", "version"} {
		assert.Contains(t, names, want)
	}
}
