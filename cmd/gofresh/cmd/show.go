package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/dbsmedya/gofresh/internal/catalog"
	"github.com/dbsmedya/gofresh/internal/database"
	"github.com/dbsmedya/gofresh/internal/render"
	"github.com/dbsmedya/gofresh/internal/statsmeta"
	"github.com/spf13/cobra"
)

var (
	showTable      string
	showVerifyLive bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the full freshness record for one table",
	Long: `Show prints a table's complete freshness record: catalog identity,
table-level counters, per-column analysis state and per-index row counts.

With --verify-live the record is additionally checked against the live
catalog: stale index entries, analyzed columns that no longer exist and
statistics-supported columns that were never analyzed are flagged.

Example:
  gofresh show --config gofresh.yaml --table shop.orders --verify-live`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showTable, "table", "t", "",
		"Schema-qualified table name (required)")
	showCmd.MarkFlagRequired("table")

	showCmd.Flags().BoolVar(&showVerifyLive, "verify-live", false,
		"Verify the record against the live catalog")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	schema, table, err := splitQualified(showTable)
	if err != nil {
		return err
	}

	ctx := database.SetupSignalHandler()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	m, ok := s.tracker.FindByName(schema, table)
	if !ok {
		return fmt.Errorf("table %q is not tracked", showTable)
	}

	printIdentity(cmd, m)
	printFreshness(cmd, s, m)
	printColumns(cmd, m)
	printIndexes(cmd, m)

	if showVerifyLive {
		return verifyLive(ctx, cmd, s, m, schema, table)
	}
	return nil
}

func printIdentity(cmd *cobra.Command, m *statsmeta.TableMeta) {
	cmd.Printf("Table: %s.%s\n", m.DatabaseName, m.TableName)
	cmd.Printf("  Catalog:   %s (id %d)\n", m.CatalogName, m.CatalogID)
	cmd.Printf("  Database:  %s (id %d)\n", m.DatabaseName, m.DatabaseID)
	cmd.Printf("  Table ID:  %d\n", m.TableID)
}

func printFreshness(cmd *cobra.Command, s *session, m *statsmeta.TableMeta) {
	health := s.tracker.Health(m)
	if m.UpdatedTime() == 0 {
		health = -1
	}

	cmd.Printf("\nFreshness:\n")
	cmd.Printf("  Row count:       %d\n", m.RowCount())
	cmd.Printf("  Updated rows:    %d\n", m.UpdatedRows())
	cmd.Printf("  Queried times:   %d\n", m.QueriedTimes())
	cmd.Printf("  Last analyzed:   %s\n", render.FormatMillis(m.UpdatedTime()))
	cmd.Printf("  Trigger:         %s\n", m.JobType())
	cmd.Printf("  User injected:   %v\n", m.UserInjected())
	cmd.Printf("  New partitions:  %v\n", m.NewPartitionLoaded())
	cmd.Printf("  Health:          %s\n", render.HealthBadge(health))
}

func printColumns(cmd *cobra.Command, m *statsmeta.TableMeta) {
	cols := m.AnalyzedColumns()
	if len(cols) == 0 {
		cmd.Printf("\nNo analyzed columns.\n")
		return
	}

	tbl := render.NewTable("COLUMN", "LAST ANALYZED", "METHOD", "TYPE", "TRIGGER", "DELTA")
	for _, name := range cols {
		cm, ok := m.Column(name)
		if !ok {
			continue
		}
		tbl.AddRow(
			name,
			render.FormatMillis(cm.UpdatedTime),
			string(cm.Method),
			string(cm.Type),
			string(cm.Trigger),
			strconv.FormatInt(cm.UpdatedRows, 10),
		)
	}
	cmd.Printf("\nColumns:\n%s", tbl.String())
}

func printIndexes(cmd *cobra.Command, m *statsmeta.TableMeta) {
	counts := m.IndexRowCounts()
	if len(counts) == 0 {
		return
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tbl := render.NewTable("INDEX ID", "ROWS")
	for _, id := range ids {
		tbl.AddRow(strconv.FormatInt(id, 10), strconv.FormatInt(counts[id], 10))
	}
	cmd.Printf("\nIndexes:\n%s", tbl.String())
}

// verifyLive checks the record against the current catalog state and
// prints every divergence found.
func verifyLive(ctx context.Context, cmd *cobra.Command, s *session, m *statsmeta.TableMeta, schema, table string) error {
	cat, err := catalog.New(s.db.DB, s.log)
	if err != nil {
		return err
	}

	cmd.Printf("\nLive verification:\n")

	live, err := cat.Table(ctx, schema, table)
	if errors.Is(err, catalog.ErrTableNotFound) {
		cmd.Printf("  - table no longer exists in the live catalog (purge --drop to forget it)\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve live table: %w", err)
	}

	findings, err := liveFindings(m, live)
	if err != nil {
		return err
	}

	if len(findings) == 0 {
		cmd.Println("  OK - record matches the live catalog.")
		return nil
	}
	for _, f := range findings {
		cmd.Printf("  - %s\n", f)
	}
	return nil
}

// liveFindings compares a record with a live handle: index entries whose
// index was dropped, analyzed columns that left the schema, and supported
// columns statistics never covered.
func liveFindings(m *statsmeta.TableMeta, live statsmeta.Table) ([]string, error) {
	var findings []string

	if live.ID() != m.TableID {
		findings = append(findings, fmt.Sprintf("table id drift: record has %d, live catalog reports %d", m.TableID, live.ID()))
	}

	liveIDs, err := live.IndexIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve live indexes: %w", err)
	}
	liveIndex := make(map[int64]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		liveIndex[id] = struct{}{}
	}

	counts := m.IndexRowCounts()
	staleIdx := make([]int64, 0, len(counts))
	for id := range counts {
		if _, ok := liveIndex[id]; !ok {
			staleIdx = append(staleIdx, id)
		}
	}
	sort.Slice(staleIdx, func(i, j int) bool { return staleIdx[i] < staleIdx[j] })
	for _, id := range staleIdx {
		findings = append(findings, fmt.Sprintf("stale index entry: index %d no longer exists", id))
	}

	schema, err := live.Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve live schema: %w", err)
	}
	liveCols := make(map[string]statsmeta.ColumnType, len(schema))
	for _, col := range schema {
		liveCols[col.Name] = col.Type
	}

	for _, name := range m.AnalyzedColumns() {
		if _, ok := liveCols[name]; !ok {
			findings = append(findings, fmt.Sprintf("analyzed column %q no longer exists", name))
		}
	}
	for _, col := range schema {
		if col.Type.SupportsStats() && m.ColumnLastUpdateTime(col.Name) == 0 {
			findings = append(findings, fmt.Sprintf("column %q was never analyzed", col.Name))
		}
	}

	return findings, nil
}
