package runstore

import (
	"errors"
	"fmt"

	"github.com/pulseboard/pulseboard/internal/parquet"
)

// ExecuteRunsExport exports the run history to Parquet files under the given
// output prefix.
func ExecuteRunsExport(rs *RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := rs.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total repo entries: %d\n", status.TableSizes[runReposTable])

	runs, err := rs.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	runRepos, err := rs.GetAllRunRepos()
	if err != nil {
		return fmt.Errorf("failed to retrieve run repos: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	runReposFile := outputFile + ".run_repos.parquet"
	if err := parquet.WriteRunReposParquet(parquet.ConvertRunRepoEntries(runRepos), runReposFile); err != nil {
		return fmt.Errorf("failed to write run repos: %w", err)
	}
	fmt.Printf("Exported %d repo entries to: %s\n", len(runRepos), runReposFile)

	return nil
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(rs *RunStore) error {
	status, err := rs.GetStatus()
	if err != nil {
		return err
	}
	fmt.Printf("Run Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return nil
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %s\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
	return nil
}
