package cmd

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureVersion runs the version command with the given build variables
// and returns everything it printed.
func captureVersion(t *testing.T, version, commit string, short bool) string {
	t.Helper()

	origVersion, origCommit, origShort := Version, Commit, versionShort
	t.Cleanup(func() {
		Version, Commit, versionShort = origVersion, origCommit, origShort
		versionCmd.SetOut(nil)
	})
	Version, Commit, versionShort = version, commit, short

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	runVersion(versionCmd, nil)
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotNil(t, versionCmd.Run)

	shortFlag := versionCmd.Flags().Lookup("short")
	assert.NotNil(t, shortFlag)
	assert.Equal(t, "false", shortFlag.DefValue)
}

func TestRunVersion(t *testing.T) {
	out := captureVersion(t, "2.4.0", "f00dfeed", false)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "gofresh 2.4.0 (commit f00dfeed)", lines[0])
	assert.Equal(t,
		fmt.Sprintf("built with %s for %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		lines[1])
}

func TestRunVersion_Short(t *testing.T) {
	out := captureVersion(t, "2.4.0", "f00dfeed", true)
	assert.Equal(t, "2.4.0\n", out)
}

func TestRunVersion_DevDefaults(t *testing.T) {
	out := captureVersion(t, "0.0.1-dev", "unknown", false)
	assert.Contains(t, out, "gofresh 0.0.1-dev (commit unknown)")
}

func TestVersionRegisteredOnRoot(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "version")
}
