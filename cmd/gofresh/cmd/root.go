package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version and Commit are stamped by the release build through ldflags.
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

var (
	cfgFile         string
	logLevel        string
	logFormat       string
	healthThreshold int
)

var rootCmd = &cobra.Command{
	Use:   "gofresh",
	Short: "MySQL Table Statistics Freshness Tracker",
	Long: `A CLI tool for tracking when MySQL table statistics were last computed
and how stale they have become since.

GoFresh keeps one freshness record per tracked table: analysis timestamps
per column, per-index row counts, and the write-delta accumulated since
the last analysis. Records survive restarts in a metadata table and feed
a health score that tells you which tables need re-analyzing.

Features:
  - Per-column and per-index freshness bookkeeping
  - Health scoring with a configurable staleness threshold
  - Live catalog verification against information_schema
  - Cross-process write serialization via advisory locks
  - Cron-friendly staleness checks with JSON output`,
	Version: Version,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "gofresh.yaml", "Path to configuration file")
	pf.StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "Override log format (json, text)")
	pf.IntVar(&healthThreshold, "health-threshold", 0, "Override health threshold (1-100) below which tables count as stale")
}

// Execute dispatches to the selected subcommand. Cobra already printed
// the error by the time this returns, so a failed run only needs the
// non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfigFile returns the path given with --config.
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides carries the persistent flag values that take precedence
// over the configuration file. Zero values mean the flag was left unset.
type CLIOverrides struct {
	LogLevel        string
	LogFormat       string
	HealthThreshold int
}

// GetCLIOverrides snapshots the override flags for ApplyOverrides.
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:        logLevel,
		LogFormat:       logFormat,
		HealthThreshold: healthThreshold,
	}
}
