package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the gofresh version together with build and platform details.`,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false,
		"Print only the version number")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	if versionShort {
		cmd.Println(Version)
		return
	}

	cmd.Printf("gofresh %s (commit %s)\n", Version, Commit)
	cmd.Printf("built with %s for %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
