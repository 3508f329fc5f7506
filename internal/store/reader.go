package store

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pulseboard/pulseboard/schema"
)

// Meta is the generation metadata written alongside the entity tables.
type Meta struct {
	SchemaVersion int
	GeneratedAt   time.Time
	RunID         string
	RowCount      int
	ColumnCount   int
}

// Reader loads a materialized SQLite artifact back into an AggregatedTable.
// The artifact is opened read-only so renderers never mutate it.
type Reader struct {
	db   *sql.DB
	path string
}

// Open opens a SQLite artifact for reading. A missing file or an artifact
// written by a newer schema version is an error.
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	r := &Reader{db: db, path: path}
	meta, err := r.Meta()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if meta.SchemaVersion > schema.ArtifactSchemaVersion {
		_ = db.Close()
		return nil, fmt.Errorf("artifact %s: schema version %d is newer than supported version %d",
			path, meta.SchemaVersion, schema.ArtifactSchemaVersion)
	}
	return r, nil
}

// Close releases the underlying database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Path returns the artifact path the reader was opened with.
func (r *Reader) Path() string {
	return r.path
}

// Meta reads the generation metadata row.
func (r *Reader) Meta() (Meta, error) {
	var meta Meta
	var generated string
	row := r.db.QueryRow(fmt.Sprintf(
		`SELECT schema_version, generated_at, run_id, row_count, column_count FROM "%s"`, schema.MetaTable))
	if err := row.Scan(&meta.SchemaVersion, &generated, &meta.RunID, &meta.RowCount, &meta.ColumnCount); err != nil {
		return Meta{}, fmt.Errorf("artifact %s: reading %s: %w", r.path, schema.MetaTable, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, generated)
	if err != nil {
		return Meta{}, fmt.Errorf("artifact %s: bad generated_at %q: %w", r.path, generated, err)
	}
	meta.GeneratedAt = ts
	return meta, nil
}

// LoadTable reconstructs the aggregated table from all entity tables.
func (r *Reader) LoadTable() (schema.AggregatedTable, error) {
	meta, err := r.Meta()
	if err != nil {
		return schema.AggregatedTable{}, err
	}

	entities, err := r.entityTables()
	if err != nil {
		return schema.AggregatedTable{}, err
	}

	merged := make(map[string]*schema.Row)
	columnSet := make(map[string]struct{})
	for _, entity := range entities {
		if err := r.loadEntity(entity, merged, columnSet); err != nil {
			return schema.AggregatedTable{}, fmt.Errorf("artifact %s: entity %s: %w", r.path, entity, err)
		}
	}

	columns := schema.SortedKeys(columnSet)
	rows := make([]schema.Row, 0, len(merged))
	for _, repo := range schema.SortedKeys(merged) {
		row := merged[repo]
		for _, col := range columns {
			if _, ok := row.Metrics[col]; !ok {
				row.Metrics[col] = schema.Null()
			}
		}
		rows = append(rows, *row)
	}

	return schema.AggregatedTable{
		GeneratedAt: meta.GeneratedAt,
		Columns:     columns,
		Rows:        rows,
	}, nil
}

// entityTables lists the user tables holding dashboard data, sorted.
func (r *Reader) entityTables() ([]string, error) {
	rows, err := r.db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != ?`,
		schema.MetaTable)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: listing tables: %w", r.path, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// loadEntity reads one entity table and folds its columns into the merged
// per-repository rows, reconstructing the squashed metric keys.
func (r *Reader) loadEntity(entity string, merged map[string]*schema.Row, columnSet map[string]struct{}) error {
	rows, err := r.db.Query(fmt.Sprintf(`SELECT * FROM "%s"`, entity))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return err
		}

		var repo string
		var snapshot time.Time
		var pairs []MetricPair
		for i, col := range columns {
			switch col {
			case "repo_name":
				repo = fmt.Sprint(values[i])
			case "snapshot_time":
				raw := fmt.Sprint(values[i])
				ts, err := time.Parse(time.RFC3339Nano, raw)
				if err != nil {
					return fmt.Errorf("bad snapshot_time %q: %w", raw, err)
				}
				snapshot = ts
			default:
				key := col
				if entity != schema.RepoEntity {
					key = entity + schema.KeyDelimiter + col
				}
				pairs = append(pairs, MetricPair{Key: key, Value: schema.FromSQL(values[i])})
			}
		}
		if repo == "" {
			return fmt.Errorf("row without repo_name")
		}

		row, ok := merged[repo]
		if !ok {
			row = &schema.Row{Repo: repo, Metrics: make(map[string]schema.MetricValue)}
			merged[repo] = row
		}
		if snapshot.After(row.Timestamp) {
			row.Timestamp = snapshot
		}
		for _, pair := range pairs {
			row.Metrics[pair.Key] = pair.Value
			columnSet[pair.Key] = struct{}{}
		}
	}
	return rows.Err()
}

// MetricPair is a reconstructed key/value read from an entity table.
type MetricPair struct {
	Key   string
	Value schema.MetricValue
}
