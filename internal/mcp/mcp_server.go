// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pulseboard/pulseboard/internal/contract"
)

// NewMCPServer initializes and configures the Pulseboard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Pulseboard Dashboard Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: get_dashboard ---
	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Read the materialized repo-health dashboard, optionally filtered by squad."),
		mcp.WithString("squad", mcp.Description("Space-separated squad names to filter by (defaults to all repositories).")),
	), h.handleGetDashboard)

	// --- 2. Tool: get_repo ---
	s.AddTool(mcp.NewTool("get_repo",
		mcp.WithDescription("Read the health metrics of a single repository from the dashboard."),
		mcp.WithString("repo_name", mcp.Description("Repository identifier (e.g. 'edx-platform')."), mcp.Required()),
	), h.handleGetRepo)

	// --- 3. Tool: list_squads ---
	s.AddTool(mcp.NewTool("list_squads",
		mcp.WithDescription("List the squads configured for the dashboard and their repositories."),
	), h.handleListSquads)

	return s
}

// StartMCPServer starts the Pulseboard MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
