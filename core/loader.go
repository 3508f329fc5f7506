// Package core holds the aggregation pipeline: loading health records,
// applying the retention window, and orchestrating materialization runs.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/schema"
	"gopkg.in/yaml.v3"
)

// recordFile mirrors the on-disk layout of one health snapshot, as written
// by the external check runner.
type recordFile struct {
	RepoName  string         `yaml:"repo_name"`
	Timestamp time.Time      `yaml:"timestamp"`
	Metadata  map[string]any `yaml:"metadata"`
}

// recordSuffix is trimmed from a file stem when repo_name is absent, so
// "edx-platform_repo_health.yaml" still resolves to "edx-platform".
const recordSuffix = "_repo_health"

// ListRecordFiles returns the sorted YAML files under dir. Subdirectories
// are not descended into; the producer writes a flat directory.
func ListRecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadRecord reads and normalizes a single health record file. Malformed
// content fails with a ParseError naming the path; skipping it is the
// caller's policy decision.
func LoadRecord(path string) (schema.RepoRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return schema.RepoRecord{}, &schema.ParseError{Path: path, Err: err}
	}

	var raw recordFile
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return schema.RepoRecord{}, &schema.ParseError{Path: path, Err: err}
	}

	repo := raw.RepoName
	if repo == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		repo = strings.TrimSuffix(stem, recordSuffix)
	}
	if repo == "" {
		return schema.RepoRecord{}, &schema.ParseError{Path: path, Err: fmt.Errorf("missing repo_name")}
	}
	if raw.Timestamp.IsZero() {
		return schema.RepoRecord{}, &schema.ParseError{Path: path, Err: fmt.Errorf("missing or invalid timestamp")}
	}
	if len(raw.Metadata) == 0 {
		return schema.RepoRecord{}, &schema.ParseError{Path: path, Err: fmt.Errorf("missing metadata")}
	}

	metrics, err := schema.SquashMetadata(raw.Metadata)
	if err != nil {
		return schema.RepoRecord{}, &schema.ParseError{Path: path, Err: err}
	}

	return schema.RepoRecord{
		Repo:      repo,
		Timestamp: raw.Timestamp.UTC(),
		Metrics:   metrics,
		Source:    path,
	}, nil
}

// LoadResult pairs the records that parsed with the paths that did not.
type LoadResult struct {
	Records []schema.RepoRecord
	Skipped []error // ParseErrors, one per malformed file
}

// LoadRecords walks dir and loads every record it can, collecting parse
// failures instead of aborting: one bad file should not sink the run.
func LoadRecords(dir string) (LoadResult, error) {
	files, err := ListRecordFiles(dir)
	if err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	for _, path := range files {
		rec, err := LoadRecord(path)
		if err != nil {
			result.Skipped = append(result.Skipped, err)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}
