package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/internal/outwriter"
	"github.com/pulseboard/pulseboard/internal/runstore"
	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/internal/webview"
)

// ExecuteMaterialize runs the full pipeline: load records, aggregate within
// the retention window, and replace the materialized artifact. Malformed
// record files are skipped with a warning; everything else is fatal.
func ExecuteMaterialize(cfg *contract.Config, runs *runstore.RunStore) error {
	start := time.Now()
	runID := uuid.NewString()

	result, err := LoadRecords(cfg.DataDir)
	if err != nil {
		return err
	}
	for _, skipErr := range result.Skipped {
		contract.LogWarn("skipping record", skipErr)
	}

	table := Aggregate(result.Records, cfg.LifetimeDays, start)

	if err := runs.BeginRun(runID, start); err != nil {
		contract.LogWarn("run tracking unavailable", err)
	}

	m := store.NewMaterializer(cfg.Backend, cfg.DBConnect, cfg.OutputPrefix)
	path, err := m.Write(table, runID)
	if err != nil {
		return err
	}

	for _, row := range table.Rows {
		if err := runs.RecordRunRepo(runID, row.Repo, row.Timestamp); err != nil {
			contract.LogWarn("run tracking unavailable", err)
			break
		}
	}
	if err := runs.EndRun(runID, time.Now(), len(result.Records), len(table.Rows), len(result.Skipped), path); err != nil {
		contract.LogWarn("run tracking unavailable", err)
	}

	fmt.Printf("Loaded %d records (%d skipped) from %s\n", len(result.Records), len(result.Skipped), cfg.DataDir)
	fmt.Printf("Kept %d repositories within the last %d days\n", len(table.Rows), cfg.LifetimeDays)
	fmt.Printf("Materialized %d columns to %s in %v\n", len(table.Columns), path, time.Since(start).Round(time.Millisecond))
	return nil
}

// ExecuteConsole renders the materialized artifact as a console table (or
// CSV/JSON, per the configured output mode).
func ExecuteConsole(cfg *contract.Config) error {
	r, err := store.Open(cfg.ArtifactPath)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	table, err := r.LoadTable()
	if err != nil {
		return err
	}
	return outwriter.PrintDashboard(table, cfg)
}

// ExecuteServe starts the interactive dashboard and blocks until SIGINT or
// SIGTERM.
func ExecuteServe(cfg *contract.Config) error {
	log := webview.NewLogger(cfg.LogFile)
	defer func() { _ = log.Sync() }()

	snapshot, err := webview.NewSnapshot(cfg.ArtifactPath, log)
	if err != nil {
		return err
	}
	srv := webview.NewServer(snapshot, cfg.Dashboard, cfg.ListenAddr, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
