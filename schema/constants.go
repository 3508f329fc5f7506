package schema

// Custom string types for type safety.
type (
	// ValueKind tags the variant held by a MetricValue.
	ValueKind string

	// OutputMode represents the format of console output.
	OutputMode string

	// DatabaseBackend represents the database backend for materialization
	// and run tracking.
	DatabaseBackend string
)

// All value kinds supported by MetricValue.
const (
	NullKind   ValueKind = "null"
	BoolKind   ValueKind = "bool"
	IntKind    ValueKind = "int"
	FloatKind  ValueKind = "float"
	StringKind ValueKind = "string"
	ListKind   ValueKind = "list"
)

// All console output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid console output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// KeyDelimiter joins nested metric keys when a record is squashed to a
// single level ("dependencies.pypi.count").
const KeyDelimiter = "."

// SQLiteSuffix is appended to the configured output prefix to form the
// materialized artifact path.
const SQLiteSuffix = ".sqlite3"

// RepoEntity is the table that collects metric keys without a dot segment.
const RepoEntity = "repo"

// MetaTable records generation metadata alongside the entity tables.
const MetaTable = "dashboard_meta"

// ArtifactSchemaVersion is bumped whenever the materialized layout changes
// incompatibly; readers refuse newer artifacts.
const ArtifactSchemaVersion = 1
