package cmd

import (
	"errors"

	"github.com/pulseboard/pulseboard/core"
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/spf13/cobra"
)

// consoleCmd renders the materialized dashboard as a console table.
var consoleCmd = &cobra.Command{
	Use:   "console <artifact.sqlite3>",
	Short: "Render the dashboard artifact as a console table.",
	Long: `Read a materialized dashboard artifact and render it as a table,
optionally narrowed to the repositories of one or more squads.

The squad filter takes space-separated squad names from the dashboard
configuration; an empty filter shows every repository.

Examples:
  # Render the full dashboard
  pulseboard console dashboard.sqlite3 --configuration=dashboard.yaml

  # Show only two squads' repositories
  pulseboard console dashboard.sqlite3 --configuration=dashboard.yaml --squad='arch platform'

  # Export to CSV for a spreadsheet
  pulseboard console dashboard.sqlite3 --configuration=dashboard.yaml --output csv --output-file health.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.ConfigPath == "" {
			contract.LogFatal("Cannot render console dashboard", errors.New("--configuration is required"))
		}
		if err := core.ExecuteConsole(cfg); err != nil {
			contract.LogFatal("Cannot render console dashboard", err)
		}
	},
}
