package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbsmedya/gofresh/internal/catalog"
	"github.com/dbsmedya/gofresh/internal/database"
	"github.com/dbsmedya/gofresh/internal/render"
	"github.com/dbsmedya/gofresh/internal/statsmeta"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check which tracked tables need a fresh analyze",
	Long: `Check evaluates every tracked table against the live catalog and
reports the ones whose statistics should be recomputed: never-analyzed
tables, tables with new partitions, tables whose supported columns lack
coverage and tables whose health dropped below the configured threshold.

The exit code is non-zero when at least one table needs analyze, so the
command can drive cron jobs and alerting directly. Use --json for
machine-readable output.

Example:
  gofresh check --config gofresh.yaml --json`,
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false,
		"Emit the report as JSON")

	rootCmd.AddCommand(checkCmd)
}

type checkEntry struct {
	Table        string `json:"table"`
	Health       int    `json:"health"`
	LastAnalyzed string `json:"lastAnalyzed"`
	Reason       string `json:"reason"`
}

type checkReport struct {
	Total int          `json:"total"`
	Stale []checkEntry `json:"stale"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := database.SetupSignalHandler()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	cat, err := catalog.New(s.db.DB, s.log)
	if err != nil {
		return err
	}

	metas := s.tracker.Snapshot()
	report := checkReport{Total: len(metas), Stale: []checkEntry{}}

	for _, m := range metas {
		name := m.DatabaseName + "." + m.TableName

		live, err := cat.Table(ctx, m.DatabaseName, m.TableName)
		if errors.Is(err, catalog.ErrTableNotFound) {
			report.Stale = append(report.Stale, newCheckEntry(s, m, name, "missing from live catalog"))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve live table %s: %w", name, err)
		}

		if s.tracker.NeedsAnalyze(m, live) {
			report.Stale = append(report.Stale, newCheckEntry(s, m, name, staleReason(s, m, live)))
		}
	}

	if checkJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		cmd.Println(string(out))
	} else {
		printCheckReport(cmd, report)
	}

	if len(report.Stale) > 0 {
		return fmt.Errorf("%d table(s) need analyze", len(report.Stale))
	}
	return nil
}

func newCheckEntry(s *session, m *statsmeta.TableMeta, name, reason string) checkEntry {
	health := s.tracker.Health(m)
	if m.UpdatedTime() == 0 {
		health = -1
	}
	return checkEntry{
		Table:        name,
		Health:       health,
		LastAnalyzed: render.FormatMillis(m.UpdatedTime()),
		Reason:       reason,
	}
}

// staleReason names the first condition that flags the table, in the
// order the tracker evaluates them.
func staleReason(s *session, m *statsmeta.TableMeta, live statsmeta.Table) string {
	if m.UpdatedTime() == 0 {
		return "never analyzed"
	}
	if m.NewPartitionLoaded() {
		return "new partitions loaded"
	}
	if cols, err := live.Schema(); err == nil {
		for _, col := range cols {
			if col.Type.SupportsStats() && m.ColumnLastUpdateTime(col.Name) == 0 {
				return fmt.Sprintf("column %q never analyzed", col.Name)
			}
		}
	}
	return fmt.Sprintf("health %d below threshold %d",
		s.tracker.Health(m), s.cfg.Tracking.HealthThreshold)
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	if len(report.Stale) == 0 {
		cmd.Printf("All %d tracked table(s) are fresh.\n", report.Total)
		return
	}

	tbl := render.NewTable("TABLE", "HEALTH", "LAST ANALYZED", "REASON")
	for _, e := range report.Stale {
		tbl.AddRow(e.Table, render.HealthBadge(e.Health), e.LastAnalyzed, e.Reason)
	}
	cmd.Print(tbl.String())
	cmd.Printf("\n%d of %d tracked table(s) need analyze\n",
		len(report.Stale), report.Total)
}
