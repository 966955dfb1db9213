package cmd

import (
	"fmt"

	"github.com/dbsmedya/gofresh/internal/database"
	"github.com/spf13/cobra"
)

var (
	purgeTable string
	purgeDrop  bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge column and index state from a freshness record",
	Long: `Purge removes all per-column entries and per-index row counts from a
record while keeping the table-level counters. Run it after a schema change
invalidated the recorded column statistics.

With --drop the whole record is deleted instead, removing the table from
tracking entirely.

Example:
  gofresh purge --config gofresh.yaml --table shop.orders
  gofresh purge --config gofresh.yaml --table shop.orders --drop`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVarP(&purgeTable, "table", "t", "",
		"Schema-qualified table name (required)")
	purgeCmd.MarkFlagRequired("table")

	purgeCmd.Flags().BoolVar(&purgeDrop, "drop", false,
		"Delete the whole record instead of clearing it")

	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	schema, table, err := splitQualified(purgeTable)
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
		return fmt.Errorf("table %q is not tracked", purgeTable)
	}

	if purgeDrop {
		if err := s.tracker.Forget(ctx, m.TableID); err != nil {
			return err
		}
		cmd.Printf("Dropped freshness record for %s\n", purgeTable)
		return nil
	}

	if err := s.tracker.Purge(ctx, m.TableID); err != nil {
		return err
	}
	cmd.Printf("Purged column and index state for %s\n", purgeTable)
	return nil
}
