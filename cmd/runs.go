package cmd

import (
	"fmt"

	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/internal/runstore"
	"github.com/pulseboard/pulseboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run-history operations.
// This is used by commands that need run-store access without full shared setup.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// Unlike runsSetup it does NOT open the store or create tables, allowing
// migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// openRunStore opens the configured run store for a runs subcommand.
func openRunStore() *runstore.RunStore {
	rs, err := runstore.NewRunStore(cfg.RunsBackend, cfg.RunsDBConnect)
	if err != nil {
		contract.LogFatal("Cannot open run store", err)
	}
	return rs
}

// runsCmd focused on run-history data management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage materialization run tracking and exports",
	Long: `Manage the historical record of materialization runs.

When enabled, pulseboard tracks every materialization run, storing:
- Run metadata (run ID, timestamps, duration, artifact path)
- Loaded/kept/skipped record counters
- The repository snapshots each run kept

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  pulseboard runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  pulseboard runs export --runs-backend sqlite --output-file run-data`,
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about materialization run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run tracking status
  pulseboard runs status --runs-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		rs := openRunStore()
		defer func() { _ = rs.Close() }()
		if err := runstore.PrintRunStatus(rs); err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
	},
}

// runsClearCmd clears the run-history data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical run tracking data",
	Long: `Delete all stored runs and their per-repository entries.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  pulseboard runs export --runs-backend sqlite --output-file backup
  pulseboard runs clear --runs-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		rs := openRunStore()
		defer func() { _ = rs.Close() }()
		if err := rs.ClearRuns(); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsExportCmd exports run-history data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format for use with analytics tools.

Exports two datasets:
- Runs - metadata about each materialization run
- Run repos - the repository snapshots each run kept

Requires: --output-file parameter

Examples:
  # Export all data
  pulseboard runs export --runs-backend sqlite --output-file run-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('run-data.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		rs := openRunStore()
		defer func() { _ = rs.Close() }()
		if err := runstore.ExecuteRunsExport(rs, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  pulseboard runs migrate --runs-backend sqlite

  # Rollback all migrations
  pulseboard runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
