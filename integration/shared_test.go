//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedBinaryPath holds the path to a shared pulseboard binary built once
	// for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getPulseboardBinary returns the path to the pulseboard binary, building it
// once if needed.
func getPulseboardBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "pulseboard-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "pulseboard")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pulseboard")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build pulseboard: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runPulseboard executes the shared binary and returns its combined output.
func runPulseboard(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getPulseboardBinary(), args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

// writeTestRecords lays out a minimal data directory and dashboard config and
// returns (dataDir, configPath).
func writeTestRecords(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	record := `repo_name: edx-platform
timestamp: 2026-08-20T10:00:00Z
metadata:
  open_source_capable: true
  docs:
    readme: true
`
	if err := os.WriteFile(filepath.Join(dir, "edx-platform_repo_health.yaml"), []byte(record), 0o644); err != nil {
		t.Fatal(err)
	}

	dashboard := `check_order:
  - open_source_capable
squads:
  arch:
    - edx-platform
`
	configPath := filepath.Join(dir, "dashboard.yaml")
	if err := os.WriteFile(configPath, []byte(dashboard), 0o644); err != nil {
		t.Fatal(err)
	}

	return dir, configPath
}
