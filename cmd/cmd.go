// Package cmd defines the command-line interface for pulseboard.
package cmd

import (
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("configuration", "", "Path to the dashboard configuration YAML")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored cells in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of materializeCmd to Viper
	materializeCmd.Flags().String("data-dir", "", "Directory of per-repository health record YAML files")
	materializeCmd.Flags().Int("data-life-time", contract.DefaultLifetimeDays, "Retention window in days for health records")
	materializeCmd.Flags().String("output-sqlite", contract.DefaultOutputPrefix, "Output prefix; the artifact is written to <prefix>.sqlite3")
	materializeCmd.Flags().String("backend", string(schema.SQLiteBackend), "Materializer backend: sqlite or mysql or postgresql")
	materializeCmd.Flags().String("db-connect", "", "Database connection string for mysql/postgresql materialization")
	if err := viper.BindPFlags(materializeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding materialize flags", err)
	}

	// Bind all flags of consoleCmd to Viper
	consoleCmd.Flags().String("squad", "", "Space-separated squad names to filter by (e.g. 'arch platform')")
	if err := viper.BindPFlags(consoleCmd.Flags()); err != nil {
		contract.LogFatal("Error binding console flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address for the interactive dashboard to listen on")
	serveCmd.Flags().String("log-file", "", "Optional rotated JSON log file for serve mode")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
