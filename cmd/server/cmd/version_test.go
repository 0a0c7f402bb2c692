package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = oldVersion, oldCommit, oldDate })
	Version, GitCommit, BuildDate = "1.2.3", "abc1234", "2026-05-01"

	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Event Planner API")
	require.Contains(t, out, "Version:    1.2.3")
	require.Contains(t, out, "Git commit: abc1234")
	require.Contains(t, out, "Build date: 2026-05-01")
	require.Contains(t, out, runtime.Version())
}

func TestVersionCommandRejectsArgs(t *testing.T) {
	_, err := execute(t, "version", "extra")
	require.Error(t, err)
}
