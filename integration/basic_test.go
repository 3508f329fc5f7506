//go:build basic

// Package integration contains end-to-end tests for the pulseboard CLI.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeAndConsole(t *testing.T) {
	dataDir, configPath := writeTestRecords(t)
	workDir := t.TempDir()

	_, err := runPulseboard(t, workDir,
		"materialize", "--data-dir", dataDir, "--data-life-time", "30", "--output-sqlite", "dashboard")
	require.NoError(t, err)

	artifact := filepath.Join(workDir, "dashboard.sqlite3")
	_, err = os.Stat(artifact)
	require.NoError(t, err)

	output, err := runPulseboard(t, workDir,
		"console", artifact, "--configuration="+configPath)
	require.NoError(t, err)
	assert.Contains(t, output, "edx-platform")
	assert.Contains(t, output, "Showing 1 repositories")

	// Squad filter narrows the view; an unknown squad is a hard failure.
	output, err = runPulseboard(t, workDir,
		"console", artifact, "--configuration="+configPath, "--squad=arch")
	require.NoError(t, err)
	assert.Contains(t, output, "edx-platform")

	_, err = runPulseboard(t, workDir,
		"console", artifact, "--configuration="+configPath, "--squad=nonexistent")
	assert.Error(t, err)
}

func TestMaterializeIsRepeatable(t *testing.T) {
	dataDir, _ := writeTestRecords(t)
	workDir := t.TempDir()

	for range 2 {
		_, err := runPulseboard(t, workDir,
			"materialize", "--data-dir", dataDir, "--output-sqlite", "dashboard")
		require.NoError(t, err)
	}
	_, err := os.Stat(filepath.Join(workDir, "dashboard.sqlite3"))
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	output, err := runPulseboard(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.Contains(output, "pulseboard CLI"))
}
