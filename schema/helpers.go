package schema

import (
	"fmt"
	"sort"
	"strings"
)

// SquashMetadata flattens an arbitrarily nested metadata mapping to a single
// level with dot-delimited keys. For input
//
//	{"a": {"b": 1, "c": {"d": 2}, "f": [1, 2]}, "e": 3}
//
// the output keys are "a.b", "a.c.d", "a.f" and "e". Leaf values are
// converted to tagged MetricValues; an unconvertible leaf fails with the
// offending key in the error.
func SquashMetadata(input map[string]any) (map[string]MetricValue, error) {
	output := make(map[string]MetricValue)
	if err := squashInto(output, "", input); err != nil {
		return nil, err
	}
	return output, nil
}

func squashInto(out map[string]MetricValue, prefix string, input map[string]any) error {
	for key, raw := range input {
		full := key
		if prefix != "" {
			full = prefix + KeyDelimiter + key
		}
		switch nested := raw.(type) {
		case map[string]any:
			if err := squashInto(out, full, nested); err != nil {
				return err
			}
		case map[any]any:
			// Older YAML decoders produce interface-keyed maps.
			converted := make(map[string]any, len(nested))
			for k, v := range nested {
				converted[fmt.Sprint(k)] = v
			}
			if err := squashInto(out, full, converted); err != nil {
				return err
			}
		default:
			value, err := ConvertValue(raw)
			if err != nil {
				return fmt.Errorf("key %q: %w", full, err)
			}
			out[full] = value
		}
	}
	return nil
}

// SupersetKeys returns the sorted union of metric keys across all records.
func SupersetKeys(records []RepoRecord) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for key := range rec.Metrics {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Standardize makes every row carry the same key set: keys a record is
// missing are filled with the null value so all rows are column-compatible.
func Standardize(records []RepoRecord, columns []string) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		metrics := make(map[string]MetricValue, len(columns))
		for _, col := range columns {
			if v, ok := rec.Metrics[col]; ok {
				metrics[col] = v
			} else {
				metrics[col] = Null()
			}
		}
		rows[i] = Row{Repo: rec.Repo, Timestamp: rec.Timestamp, Metrics: metrics}
	}
	return rows
}

// EntityOf splits a squashed key into its entity (first dot segment) and
// the remaining column name. Keys without a delimiter belong to the repo
// entity and keep their full name as the column.
func EntityOf(key string) (entity, column string) {
	if head, tail, found := strings.Cut(key, KeyDelimiter); found {
		return head, tail
	}
	return RepoEntity, key
}

// GroupByEntity partitions the columns into per-entity column lists,
// preserving the input order within each entity.
func GroupByEntity(columns []string) map[string][]string {
	groups := make(map[string][]string)
	for _, col := range columns {
		entity, _ := EntityOf(col)
		groups[entity] = append(groups[entity], col)
	}
	return groups
}
