// Package parquet exports run-history data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/pulseboard/pulseboard/schema"
)

// Run represents a single materialization run with metadata.
// This struct maps to the pulseboard_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// RecordsLoaded is the number of record files parsed successfully
	RecordsLoaded int32 `parquet:"records_loaded,snappy"`

	// RecordsKept is the number of rows retained after the age filter
	RecordsKept int32 `parquet:"records_kept,snappy"`

	// ParseFailures is the number of record files skipped with errors
	ParseFailures int32 `parquet:"parse_failures,snappy"`

	// OutputPath is where the run materialized its artifact
	OutputPath string `parquet:"output_path,snappy"`
}

// RunRepo represents one repository row kept by a run.
// This struct maps to the pulseboard_run_repos database table.
type RunRepo struct {
	// RunID references the parent run
	RunID string `parquet:"run_id,snappy"`

	// RepoName is the repository identifier
	RepoName string `parquet:"repo_name,snappy"`

	// SnapshotTime is the record timestamp the run kept for the repository
	SnapshotTime time.Time `parquet:"snapshot_time,snappy"`
}

// ConvertRunRecords converts run records to their Parquet representation.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	out := make([]Run, len(records))
	for i, rec := range records {
		run := Run{
			RunID:         rec.RunID,
			StartTime:     rec.StartTime,
			EndTime:       rec.EndTime,
			RecordsLoaded: int32(rec.RecordsLoaded),
			RecordsKept:   int32(rec.RecordsKept),
			ParseFailures: int32(rec.ParseFailures),
			OutputPath:    rec.OutputPath,
		}
		if rec.EndTime != nil {
			ms := rec.EndTime.Sub(rec.StartTime).Milliseconds()
			run.RunDurationMs = &ms
		}
		out[i] = run
	}
	return out
}

// ConvertRunRepoEntries converts run-repo entries to their Parquet representation.
func ConvertRunRepoEntries(entries []schema.RunRepoEntry) []RunRepo {
	out := make([]RunRepo, len(entries))
	for i, entry := range entries {
		out[i] = RunRepo{
			RunID:        entry.RunID,
			RepoName:     entry.RepoName,
			SnapshotTime: entry.SnapshotTime,
		}
	}
	return out
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunReposParquet writes a slice of RunRepo structs to a Parquet file.
func WriteRunReposParquet(data []RunRepo, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records to a Parquet file using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
