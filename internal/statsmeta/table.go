package statsmeta

// Table is a point-in-time handle to a table's catalog identity, live
// index set, and base schema. Providers resolve catalog state up front
// when building the handle, so no method here performs I/O; resolution
// failures captured at snapshot time surface through the error returns.
type Table interface {
	// ID returns the table's numeric id.
	ID() int64

	// Name returns the table name.
	Name() string

	// Database resolves the owning database identity.
	Database() (Database, error)

	// Managed reports whether the table uses the internally-managed
	// storage kind. Row counts and per-index row counts are only
	// authoritative for managed tables; external tables (federated
	// engines, views) are tracked by column freshness alone.
	Managed() bool

	// RowCount returns the current row-count estimate.
	RowCount() int64

	// IndexIDs returns the ids of the table's live secondary indexes.
	IndexIDs() ([]int64, error)

	// Schema returns the base schema in DDL order.
	Schema() ([]Column, error)
}

// Database resolves a database's identity and owning catalog.
type Database interface {
	ID() int64
	Name() string
	Catalog() (Catalog, error)
}

// Catalog identifies a catalog by id and name.
type Catalog interface {
	ID() int64
	Name() string
}

// Column is a single base-schema column.
type Column struct {
	Name string
	Type ColumnType
}

// ColumnType is a normalized (lower-case, parameter-free) column data
// type, e.g. "bigint" or "varchar".
type ColumnType string

// SupportsStats reports whether columns of this type can carry collected
// statistics. Large-object and spatial types are excluded: they cannot be
// meaningfully summarized, so the coverage check ignores them.
func (t ColumnType) SupportsStats() bool {
	switch t {
	case "json", "geometry",
		"blob", "tinyblob", "mediumblob", "longblob",
		"text", "tinytext", "mediumtext", "longtext":
		return false
	}
	return true
}
