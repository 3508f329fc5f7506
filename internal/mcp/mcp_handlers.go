package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/internal/outwriter"
	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// loadTable opens the artifact fresh on each call so tools always see the
// latest materialization.
func (h *toolHandler) loadTable() (schema.AggregatedTable, error) {
	r, err := store.Open(h.baseCfg.ArtifactPath)
	if err != nil {
		return schema.AggregatedTable{}, err
	}
	defer func() { _ = r.Close() }()
	return r.LoadTable()
}

func (h *toolHandler) handleGetDashboard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := h.loadTable()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dashboard: %v", err)), nil
	}

	cfg := &contract.Config{
		Squads:    contract.ParseSquadFilter(request.GetString("squad", "")),
		Dashboard: h.baseCfg.Dashboard,
	}
	view, err := outwriter.BuildView(table, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid squad filter: %v", err)), nil
	}

	rows := make([]map[string]any, len(view.Rows))
	for i, r := range view.Rows {
		metrics := make(map[string]any, len(view.Columns))
		for _, col := range view.Columns {
			metrics[col] = r.Metrics[col].JSON()
		}
		rows[i] = map[string]any{
			"repo_name":     r.Repo,
			"snapshot_time": r.Timestamp.UTC().Format(time.RFC3339),
			"metrics":       metrics,
		}
	}
	payload := map[string]any{
		"generated_at": view.GeneratedAt.UTC().Format(time.RFC3339),
		"columns":      view.Columns,
		"rows":         rows,
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRepo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoName := request.GetString("repo_name", "")
	if repoName == "" {
		return mcp.NewToolResultError("repo_name is required"), nil
	}

	table, err := h.loadTable()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dashboard: %v", err)), nil
	}

	row, ok := table.Lookup(repoName)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("repository %q not found in dashboard", repoName)), nil
	}

	metrics := make(map[string]any, len(table.Columns))
	for _, col := range table.Columns {
		metrics[col] = row.Metrics[col].JSON()
	}
	payload := map[string]any{
		"repo_name":     row.Repo,
		"snapshot_time": row.Timestamp.UTC().Format(time.RFC3339),
		"squads":        h.baseCfg.Dashboard.SquadsOf(row.Repo),
		"metrics":       metrics,
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListSquads(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	squads := make([]map[string]any, 0, len(h.baseCfg.Dashboard.Squads))
	for _, name := range h.baseCfg.Dashboard.SquadNames() {
		squads = append(squads, map[string]any{
			"name":  name,
			"repos": h.baseCfg.Dashboard.Squads[name],
		})
	}

	jsonData, _ := json.MarshalIndent(map[string]any{"squads": squads}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
