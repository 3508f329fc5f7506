package core

import (
	"sort"
	"time"

	"github.com/pulseboard/pulseboard/schema"
)

// Aggregate merges per-repository records into a single table:
//
//   - records older than lifetimeDays relative to now are dropped;
//   - duplicate repository identifiers collapse to the latest snapshot
//     (last-write-wins by timestamp);
//   - rows are sorted by repository name and standardized to the sorted
//     superset of metric keys.
//
// The result is deterministic for a fixed input set and fixed now.
func Aggregate(records []schema.RepoRecord, lifetimeDays int, now time.Time) schema.AggregatedTable {
	cutoff := now.AddDate(0, 0, -lifetimeDays)

	latest := make(map[string]schema.RepoRecord)
	for _, rec := range records {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		if prev, ok := latest[rec.Repo]; ok && !rec.Timestamp.After(prev.Timestamp) {
			continue
		}
		latest[rec.Repo] = rec
	}

	kept := make([]schema.RepoRecord, 0, len(latest))
	for _, rec := range latest {
		kept = append(kept, rec)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Repo < kept[j].Repo })

	columns := schema.SupersetKeys(kept)
	return schema.AggregatedTable{
		GeneratedAt: now.UTC(),
		Columns:     columns,
		Rows:        schema.Standardize(kept, columns),
	}
}
