// Package schema has configs, models and shared types for all parts of pulseboard.
package schema

import "time"

// RepoRecord is one snapshot of a repository's health metrics, as produced
// by an external health-check run. Metrics are squashed to a single level
// with dot-delimited keys (e.g. "dependencies.pypi.count") and are immutable
// once loaded.
type RepoRecord struct {
	Repo      string                 // Repository identifier (e.g. "edx-platform")
	Timestamp time.Time              // When the snapshot was generated
	Metrics   map[string]MetricValue // Squashed metric-name -> tagged value
	Source    string                 // Path of the file the record was loaded from
}

// Row is one standardized row of the aggregated table. Unlike RepoRecord,
// a Row is guaranteed to carry a value (possibly null) for every column of
// its table.
type Row struct {
	Repo      string
	Timestamp time.Time
	Metrics   map[string]MetricValue
}

// AggregatedTable is the unified dashboard table: one row per repository,
// retained within the configured age window, with the sorted superset of
// metric keys as columns. It is rebuilt fully on each materialization run.
type AggregatedTable struct {
	GeneratedAt time.Time
	Columns     []string // Sorted superset of metric keys across all rows
	Rows        []Row    // Sorted by repository name
}

// Lookup returns the row for a repository, if present.
func (t *AggregatedTable) Lookup(repo string) (Row, bool) {
	for _, row := range t.Rows {
		if row.Repo == repo {
			return row, true
		}
	}
	return Row{}, false
}

// RepoNames returns the repository names of all rows, in table order.
func (t *AggregatedTable) RepoNames() []string {
	names := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		names[i] = row.Repo
	}
	return names
}

// RunRecord captures one materialization run for historical tracking.
type RunRecord struct {
	RunID         string     // UUID assigned at run start
	StartTime     time.Time  // When the run began
	EndTime       *time.Time // When the run finished (nil while running)
	RecordsLoaded int        // Records successfully parsed from the data dir
	RecordsKept   int        // Rows retained after the age filter
	ParseFailures int        // Files skipped with a parse error
	OutputPath    string     // Path of the materialized artifact
}

// RunRepoEntry links a materialization run to one repository row it kept.
type RunRepoEntry struct {
	RunID        string
	RepoName     string
	SnapshotTime time.Time
}

// StoreStatus describes the state of the run-history store.
type StoreStatus struct {
	Backend       string
	Connected     bool
	TotalRuns     int64
	LastRunID     string
	LastRunTime   time.Time
	OldestRunTime time.Time
	TableSizes    map[string]int64
}
