package cmd

import (
	"context"
	"errors"

	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp <artifact.sqlite3> <configuration.yaml>",
	Short: "Start the Pulseboard MCP server",
	Long: `Launch an MCP server that allows AI agents to query the dashboard
via standard tools (get_dashboard, get_repo, list_squads).

The server speaks the protocol on stdio, so keep stdout clean of other
output when running it.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.ConfigPath == "" {
			return errors.New("a dashboard configuration is required")
		}
		return mcp.StartMCPServer(context.Background(), cfg)
	},
}
