// Package contract provides configuration and shared utilities for the
// pulseboard CLI's internal architecture.
package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pulseboard/pulseboard/schema"
)

// Color variables for console output.
var (
	PassColor = color.New(color.FgGreen)           // passing boolean checks
	FailColor = color.New(color.FgRed, color.Bold) // failing boolean checks
)

// FormatCell renders a metric value for the console table, coloring
// booleans when colors are enabled.
func FormatCell(v schema.MetricValue, useColors bool) string {
	if v.Kind == schema.BoolKind && useColors {
		if v.Bool {
			return PassColor.Sprint("true")
		}
		return FailColor.Sprint("false")
	}
	return v.Display()
}

// TruncateCell truncates a cell to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis plus content.
func TruncateCell(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run-history
// storage.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pulseboard_runs.db"
	}
	return filepath.Join(homeDir, ".pulseboard_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
