// Package outwriter has output and writer logic for the console renderer.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/schema"
)

// PrintDashboard renders the aggregated table to the configured destination,
// applying the squad filter and display configuration first.
func PrintDashboard(table schema.AggregatedTable, cfg *contract.Config) error {
	view, err := BuildView(table, cfg)
	if err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteDashboardResults(w, view, cfg)
	}, "Saved dashboard")
}

// View is the display-ready slice of the aggregated table: rows narrowed by
// the squad filter and columns ordered per the dashboard configuration.
type View struct {
	Columns     []string // Ordered metric keys
	Headers     []string // Aliased column headers, parallel to Columns
	Rows        []schema.Row
	TotalRows   int // Row count before the squad filter
	GeneratedAt time.Time
	Squads      []string // Active squad filter, empty when showing all
}

// BuildView applies the squad filter and column ordering from the dashboard
// configuration. An unknown squad name is a FilterError.
func BuildView(table schema.AggregatedTable, cfg *contract.Config) (View, error) {
	repos, err := cfg.Dashboard.ResolveSquads(cfg.Squads)
	if err != nil {
		return View{}, err
	}

	rows := table.Rows
	if repos != nil {
		rows = make([]schema.Row, 0, len(repos))
		for _, row := range table.Rows {
			if _, ok := repos[row.Repo]; ok {
				rows = append(rows, row)
			}
		}
	}

	columns := cfg.Dashboard.OrderedColumns(table.Columns)
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = cfg.Dashboard.AliasFor(col)
	}

	return View{
		Columns:     columns,
		Headers:     headers,
		Rows:        rows,
		TotalRows:   len(table.Rows),
		GeneratedAt: table.GeneratedAt,
		Squads:      cfg.Squads,
	}, nil
}

// WriteDashboardResults outputs the dashboard view, dispatching based on the output format configured.
func WriteDashboardResults(w io.Writer, view View, cfg *contract.Config) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSONResultsForDashboard(w, view); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		if err := writeCSVResultsForDashboard(csvWriter, view); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeDashboardTable(w, view, cfg)
	}
	return nil
}

// writeDashboardTable writes the view as a bordered console table.
func writeDashboardTable(w io.Writer, view View, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	headers := append([]string{"Repo", "Updated"}, view.Headers...)
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxCell := getMaxCellWidth(cfg, len(view.Columns))

	var data [][]string
	for _, r := range view.Rows {
		row := make([]string, 0, len(view.Columns)+2)
		row = append(row, r.Repo, r.Timestamp.UTC().Format("2006-01-02"))
		for _, col := range view.Columns {
			cell := contract.FormatCell(r.Metrics[col], cfg.UseColors)
			row = append(row, contract.TruncateCell(cell, maxCell))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(view.Squads) > 0 {
		if _, err := fmt.Fprintf(w, "Showing %d of %d repositories (squads: %s)\n",
			len(view.Rows), view.TotalRows, strings.Join(view.Squads, ", ")); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "Showing %d repositories\n", len(view.Rows)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Dashboard generated at %s\n", view.GeneratedAt.UTC().Format(time.RFC3339))
	return err
}

// dashboardRowJSON is the JSON shape of one rendered row.
type dashboardRowJSON struct {
	RepoName     string         `json:"repo_name"`
	SnapshotTime string         `json:"snapshot_time"`
	Metrics      map[string]any `json:"metrics"`
}

// writeJSONResultsForDashboard marshals the view to JSON and writes it.
func writeJSONResultsForDashboard(w io.Writer, view View) error {
	rows := make([]dashboardRowJSON, len(view.Rows))
	for i, r := range view.Rows {
		metrics := make(map[string]any, len(view.Columns))
		for _, col := range view.Columns {
			metrics[col] = r.Metrics[col].JSON()
		}
		rows[i] = dashboardRowJSON{
			RepoName:     r.Repo,
			SnapshotTime: r.Timestamp.UTC().Format(time.RFC3339),
			Metrics:      metrics,
		}
	}
	payload := struct {
		GeneratedAt string             `json:"generated_at"`
		Columns     []string           `json:"columns"`
		Rows        []dashboardRowJSON `json:"rows"`
	}{
		GeneratedAt: view.GeneratedAt.UTC().Format(time.RFC3339),
		Columns:     view.Columns,
		Rows:        rows,
	}
	return writeJSON(w, payload)
}

// writeCSVResultsForDashboard writes the view data to a CSV writer.
func writeCSVResultsForDashboard(w *csv.Writer, view View) error {
	// 1. Write Header Row
	header := append([]string{"repo_name", "snapshot_time"}, view.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	// 2. Write Data Rows
	for _, r := range view.Rows {
		row := make([]string, 0, len(view.Columns)+2)
		row = append(row, r.Repo, r.Timestamp.UTC().Format(time.RFC3339))
		for _, col := range view.Columns {
			v := r.Metrics[col]
			if v.IsNull() {
				row = append(row, "")
			} else {
				row = append(row, v.Display())
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
