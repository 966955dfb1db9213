package cmd

import (
	"strconv"

	"github.com/dbsmedya/gofresh/internal/database"
	"github.com/dbsmedya/gofresh/internal/render"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked tables and their freshness",
	Long: `List shows every tracked table with its row count, accumulated
write-delta, query counter, last analysis and health score.

Example:
  gofresh list --config gofresh.yaml`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := database.SetupSignalHandler()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	metas := s.tracker.Snapshot()
	if len(metas) == 0 {
		cmd.Println("No tracked tables.")
		return nil
	}

	tbl := render.NewTable("TABLE", "ROWS", "DELTA", "QUERIES", "TRIGGER", "LAST ANALYZED", "HEALTH")
	for _, m := range metas {
		health := s.tracker.Health(m)
		if m.UpdatedTime() == 0 {
			health = -1
		}
		tbl.AddRow(
			m.DatabaseName+"."+m.TableName,
			strconv.FormatInt(m.RowCount(), 10),
			strconv.FormatInt(m.UpdatedRows(), 10),
			strconv.FormatInt(m.QueriedTimes(), 10),
			string(m.JobType()),
			render.FormatMillis(m.UpdatedTime()),
			render.HealthBadge(health),
		)
	}

	cmd.Print(tbl.String())
	cmd.Printf("\nTotal: %d table(s)\n", len(metas))
	return nil
}
