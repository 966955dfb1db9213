package cmd

import (
	"fmt"

	"github.com/dbsmedya/gofresh/internal/database"
	"github.com/spf13/cobra"
)

var (
	resetTable string
	resetAll   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset freshness records so tables read as never analyzed",
	Long: `Reset zeroes a record's analysis timestamp and every per-column
write-delta. The column entries themselves and the table-level counters
are kept. A reset table reports its health as never analyzed, which
flags it for re-analysis on the next check.

Example:
  gofresh reset --config gofresh.yaml --table shop.orders
  gofresh reset --config gofresh.yaml --all`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().StringVarP(&resetTable, "table", "t", "",
		"Schema-qualified table name")
	resetCmd.Flags().BoolVar(&resetAll, "all", false,
		"Reset every tracked table")

	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if resetAll == (resetTable != "") {
		return fmt.Errorf("specify exactly one of --table or --all")
	}

	ctx := database.SetupSignalHandler()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if resetAll {
		metas := s.tracker.Snapshot()
		for _, m := range metas {
			if err := s.tracker.Reset(ctx, m.TableID); err != nil {
				return err
			}
		}
		cmd.Printf("Reset %d record(s)\n", len(metas))
		return nil
	}

	schema, table, err := splitQualified(resetTable)
	if err != nil {
		return err
	}
	m, ok := s.tracker.FindByName(schema, table)
	if !ok {
		return fmt.Errorf("table %q is not tracked", resetTable)
	}
	if err := s.tracker.Reset(ctx, m.TableID); err != nil {
		return err
	}
	cmd.Printf("Reset freshness record for %s\n", resetTable)
	return nil
}
