// Package store materializes the aggregated dashboard table into a SQLite
// artifact (or a server-side database) and reads it back for rendering.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/schema"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Materializer owns the output artifact during a write. The SQLite backend
// replaces the target file wholesale (delete-old-then-write-new); the server
// backends drop and recreate the entity tables inside the target database.
type Materializer struct {
	backend schema.DatabaseBackend
	connStr string
	prefix  string
}

// NewMaterializer creates a materializer for the given backend. For the
// SQLite backend the artifact path is prefix + ".sqlite3"; connStr is
// ignored. For mysql/postgresql, connStr selects the target database.
func NewMaterializer(backend schema.DatabaseBackend, connStr, prefix string) *Materializer {
	return &Materializer{backend: backend, connStr: connStr, prefix: prefix}
}

// ArtifactPath returns the path the SQLite backend writes to.
func (m *Materializer) ArtifactPath() string {
	return m.prefix + schema.SQLiteSuffix
}

// Write replaces the previous materialization with the given table. It
// returns the artifact location (file path, or connection string for server
// backends). Failures are WriteErrors; on failure no partial SQLite file is
// left behind.
func (m *Materializer) Write(table schema.AggregatedTable, runID string) (string, error) {
	switch m.backend {
	case schema.SQLiteBackend:
		return m.writeSQLite(table, runID)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return m.writeServer(table, runID)
	default:
		return "", &schema.WriteError{Path: m.prefix, Err: fmt.Errorf("unsupported backend: %s", m.backend)}
	}
}

// writeSQLite deletes the previous artifact and writes a fresh database.
// There is a brief window with no file at all; concurrent materialization
// runs are a caller responsibility.
func (m *Materializer) writeSQLite(table schema.AggregatedTable, runID string) (string, error) {
	path := m.ArtifactPath()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", &schema.WriteError{Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", &schema.WriteError{Path: path, Err: err}
	}
	// Limit SQLite to a single open connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := m.writeAll(db, table, runID); err != nil {
		_ = db.Close()
		_ = os.Remove(path) // no partially-written artifact
		return "", &schema.WriteError{Path: path, Err: err}
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(path)
		return "", &schema.WriteError{Path: path, Err: err}
	}
	return path, nil
}

// writeServer drops and recreates the entity tables in the target database.
func (m *Materializer) writeServer(table schema.AggregatedTable, runID string) (string, error) {
	driverName := "mysql"
	if m.backend == schema.PostgreSQLBackend {
		driverName = "pgx"
	}

	db, err := sql.Open(driverName, m.connStr)
	if err != nil {
		return "", &schema.WriteError{Path: m.connStr, Err: err}
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return "", &schema.WriteError{Path: m.connStr, Err: fmt.Errorf("failed to connect to %s database: %w", m.backend, err)}
	}

	if err := m.writeAll(db, table, runID); err != nil {
		return "", &schema.WriteError{Path: m.connStr, Err: err}
	}
	return m.connStr, nil
}

// writeAll creates and populates one table per logical entity plus the meta
// table, all inside a single transaction.
func (m *Materializer) writeAll(db *sql.DB, table schema.AggregatedTable, runID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	kinds := schema.ColumnKinds(table.Columns, table.Rows)
	groups := schema.GroupByEntity(table.Columns)

	// The meta table name is reserved; an entity with that name would be
	// dropped again by writeMeta.
	if _, ok := groups[schema.MetaTable]; ok {
		return fmt.Errorf("metric keys may not use the reserved %s entity", schema.MetaTable)
	}

	for _, entity := range schema.SortedKeys(groups) {
		if err := m.writeEntity(tx, entity, groups[entity], kinds, table.Rows); err != nil {
			return fmt.Errorf("entity %s: %w", entity, err)
		}
	}
	if err := m.writeMeta(tx, table, runID); err != nil {
		return fmt.Errorf("meta: %w", err)
	}

	return tx.Commit()
}

// writeEntity creates one entity table and inserts every row's slice of it.
func (m *Materializer) writeEntity(tx *sql.Tx, entity string, keys []string, kinds map[string]schema.ValueKind, rows []schema.Row) error {
	columns := make([]string, len(keys))
	for i, key := range keys {
		_, col := schema.EntityOf(key)
		columns[i] = col
	}

	var ddl strings.Builder
	fmt.Fprintf(&ddl, "DROP TABLE IF EXISTS %s", m.quote(entity))
	if _, err := tx.Exec(ddl.String()); err != nil {
		return err
	}

	ddl.Reset()
	fmt.Fprintf(&ddl, "CREATE TABLE %s (%s PRIMARY KEY, %s NOT NULL",
		m.quote(entity), m.repoNameColumn(), m.quote("snapshot_time")+" "+m.textType())
	for i, key := range keys {
		fmt.Fprintf(&ddl, ", %s %s", m.quote(columns[i]), m.columnType(kinds[key]))
	}
	ddl.WriteString(")")
	if _, err := tx.Exec(ddl.String()); err != nil {
		return err
	}

	insert := m.insertStatement(entity, columns)
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		args := make([]any, 0, len(keys)+2)
		args = append(args, row.Repo, row.Timestamp.UTC().Format(time.RFC3339Nano))
		for _, key := range keys {
			args = append(args, row.Metrics[key].SQL())
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("repo %s: %w", row.Repo, err)
		}
	}
	return nil
}

// writeMeta records generation metadata for readers to validate against.
func (m *Materializer) writeMeta(tx *sql.Tx, table schema.AggregatedTable, runID string) error {
	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", m.quote(schema.MetaTable))); err != nil {
		return err
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE %s (schema_version %s NOT NULL, generated_at %s NOT NULL, run_id %s NOT NULL, row_count %s NOT NULL, column_count %s NOT NULL)",
		m.quote(schema.MetaTable), m.intType(), m.textType(), m.textType(), m.intType(), m.intType())
	if _, err := tx.Exec(ddl); err != nil {
		return err
	}

	insert := fmt.Sprintf("INSERT INTO %s (schema_version, generated_at, run_id, row_count, column_count) VALUES (%s)",
		m.quote(schema.MetaTable), m.placeholders(5))
	_, err := tx.Exec(insert,
		schema.ArtifactSchemaVersion,
		table.GeneratedAt.UTC().Format(time.RFC3339Nano),
		runID,
		len(table.Rows),
		len(table.Columns))
	return err
}

// insertStatement builds the INSERT for an entity table.
func (m *Materializer) insertStatement(entity string, columns []string) string {
	quoted := make([]string, 0, len(columns)+2)
	quoted = append(quoted, m.quote("repo_name"), m.quote("snapshot_time"))
	for _, col := range columns {
		quoted = append(quoted, m.quote(col))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		m.quote(entity), strings.Join(quoted, ", "), m.placeholders(len(quoted)))
}

// placeholders renders n SQL placeholders for the backend.
func (m *Materializer) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if m.backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// quote quotes an identifier for the backend. Squashed metric keys contain
// dots, so every identifier is quoted.
func (m *Materializer) quote(name string) string {
	if m.backend == schema.MySQLBackend {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// repoNameColumn returns the primary-key column definition per backend.
// MySQL cannot index an unbounded TEXT column.
func (m *Materializer) repoNameColumn() string {
	if m.backend == schema.MySQLBackend {
		return m.quote("repo_name") + " VARCHAR(255)"
	}
	return m.quote("repo_name") + " TEXT"
}

// columnType maps a value kind to the backend column type.
func (m *Materializer) columnType(kind schema.ValueKind) string {
	switch kind {
	case schema.BoolKind, schema.IntKind:
		return m.intType()
	case schema.FloatKind:
		return m.floatType()
	default:
		return m.textType()
	}
}

func (m *Materializer) intType() string {
	switch m.backend {
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return "BIGINT"
	default:
		return "INTEGER"
	}
}

func (m *Materializer) floatType() string {
	switch m.backend {
	case schema.MySQLBackend:
		return "DOUBLE"
	case schema.PostgreSQLBackend:
		return "DOUBLE PRECISION"
	default:
		return "REAL"
	}
}

func (m *Materializer) textType() string {
	return "TEXT"
}
