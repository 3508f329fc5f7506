package cmd

import (
	"github.com/pulseboard/pulseboard/core"
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/spf13/cobra"
)

// serveCmd starts the interactive web dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve <artifact.sqlite3> <configuration.yaml>",
	Short: "Serve the interactive dashboard over HTTP.",
	Long: `Start an HTTP server rendering the dashboard artifact, with a squad
filter selectable in the browser and a JSON API underneath.

The artifact file is watched for changes: when a materialization run
replaces it, the served dashboard reloads automatically without a
restart.

Routes:
  GET /            HTML dashboard with squad filter
  GET /api/rows    Dashboard rows as JSON (?squad=... to filter)
  GET /api/squads  Configured squad names
  GET /healthz     Liveness and artifact freshness

Examples:
  # Serve on the default address
  pulseboard serve dashboard.sqlite3 dashboard.yaml

  # Custom listen address with a rotated log file
  pulseboard serve dashboard.sqlite3 dashboard.yaml --listen :9000 --log-file pulseboard.log`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteServe(cfg); err != nil {
			contract.LogFatal("Cannot serve dashboard", err)
		}
	},
}
