package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	rs, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	return rs
}

func TestRunLifecycle(t *testing.T) {
	rs := newTestStore(t)
	runID := uuid.NewString()
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, rs.BeginRun(runID, start))
	require.NoError(t, rs.RecordRunRepo(runID, "edx-platform", start.Add(-time.Hour)))
	require.NoError(t, rs.RecordRunRepo(runID, "course-discovery", start.Add(-2*time.Hour)))
	require.NoError(t, rs.EndRun(runID, start.Add(3*time.Second), 5, 2, 1, "dashboard.sqlite3"))

	runs, err := rs.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	rec := runs[0]
	assert.Equal(t, runID, rec.RunID)
	assert.True(t, rec.StartTime.Equal(start))
	require.NotNil(t, rec.EndTime)
	assert.True(t, rec.EndTime.Equal(start.Add(3*time.Second)))
	assert.Equal(t, 5, rec.RecordsLoaded)
	assert.Equal(t, 2, rec.RecordsKept)
	assert.Equal(t, 1, rec.ParseFailures)
	assert.Equal(t, "dashboard.sqlite3", rec.OutputPath)

	repos, err := rs.GetAllRunRepos()
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "course-discovery", repos[0].RepoName)
	assert.Equal(t, "edx-platform", repos[1].RepoName)
}

func TestGetStatus(t *testing.T) {
	rs := newTestStore(t)

	status, err := rs.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)

	first := uuid.NewString()
	second := uuid.NewString()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rs.BeginRun(first, base))
	require.NoError(t, rs.BeginRun(second, base.Add(time.Hour)))

	status, err = rs.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TotalRuns)
	assert.Equal(t, second, status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(base.Add(time.Hour)))
	assert.True(t, status.OldestRunTime.Equal(base))
	assert.Equal(t, int64(2), status.TableSizes["pulseboard_runs"])
}

func TestClearRuns(t *testing.T) {
	rs := newTestStore(t)
	runID := uuid.NewString()
	now := time.Now()
	require.NoError(t, rs.BeginRun(runID, now))
	require.NoError(t, rs.RecordRunRepo(runID, "edx-platform", now))

	require.NoError(t, rs.ClearRuns())

	status, err := rs.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalRuns)
	assert.Zero(t, status.TableSizes["pulseboard_run_repos"])
}

func TestNoneBackendIsNoop(t *testing.T) {
	rs, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	defer func() { _ = rs.Close() }()

	assert.False(t, rs.Enabled())
	assert.NoError(t, rs.BeginRun("x", time.Now()))
	assert.NoError(t, rs.EndRun("x", time.Now(), 0, 0, 0, ""))
	assert.NoError(t, rs.ClearRuns())

	runs, err := rs.GetAllRuns()
	require.NoError(t, err)
	assert.Nil(t, runs)
}
