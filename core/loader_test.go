package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pulseboard/pulseboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecord = `repo_name: edx-platform
timestamp: 2026-03-13T10:00:00Z
metadata:
  open_source_capable: true
  dependencies:
    pypi:
      count: 312
      packages:
        - django
        - celery
  docs:
    readme: true
`

func writeRecord(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeRecord(t, dir, "edx-platform_repo_health.yaml", validRecord)

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, "edx-platform", rec.Repo)
	assert.Equal(t, time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, path, rec.Source)

	// Nested metadata is squashed to dot-delimited keys.
	assert.Equal(t, schema.BoolValue(true), rec.Metrics["open_source_capable"])
	assert.Equal(t, schema.IntValue(312), rec.Metrics["dependencies.pypi.count"])
	assert.Equal(t, schema.ListValue([]string{"django", "celery"}), rec.Metrics["dependencies.pypi.packages"])
	assert.Equal(t, schema.BoolValue(true), rec.Metrics["docs.readme"])
}

func TestLoadRecordRepoNameFromFilename(t *testing.T) {
	dir := t.TempDir()
	content := `timestamp: 2026-03-13T10:00:00Z
metadata:
  docs:
    readme: false
`
	path := writeRecord(t, dir, "course-discovery_repo_health.yaml", content)

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, "course-discovery", rec.Repo)
}

func TestLoadRecordParseErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"bad-yaml.yaml", "repo_name: [unclosed"},
		{"no-timestamp.yaml", "repo_name: x\nmetadata:\n  a: 1\n"},
		{"no-metadata.yaml", "repo_name: x\ntimestamp: 2026-03-13T10:00:00Z\n"},
	}
	for _, tc := range cases {
		path := writeRecord(t, dir, tc.name, tc.content)
		_, err := LoadRecord(path)
		var perr *schema.ParseError
		require.ErrorAs(t, err, &perr, "file %s should fail with ParseError", tc.name)
		assert.Equal(t, path, perr.Path)
	}
}

func TestLoadRecordsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "good_repo_health.yaml", validRecord)
	writeRecord(t, dir, "bad_repo_health.yaml", "not: [valid")
	writeRecord(t, dir, "notes.txt", "ignored entirely")

	result, err := LoadRecords(dir)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "edx-platform", result.Records[0].Repo)

	var perr *schema.ParseError
	assert.ErrorAs(t, result.Skipped[0], &perr)
}

func TestLoadRecordsMissingDir(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestListRecordFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "b_repo_health.yml", validRecord)
	writeRecord(t, dir, "a_repo_health.yaml", validRecord)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	files, err := ListRecordFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a_repo_health.yaml"), files[0])
	assert.Equal(t, filepath.Join(dir, "b_repo_health.yml"), files[1])
}
