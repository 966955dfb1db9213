// Package catalog provides live table handles for GoFresh.
//
// The catalog resolves schema-qualified table names against a running MySQL
// server's information_schema and returns immutable snapshot handles that
// implement statsmeta.Table. Handles capture identity, row counts, index ids
// and the column schema at resolution time; they never hold the connection.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gofresh/internal/logger"
	"github.com/dbsmedya/gofresh/internal/statsmeta"
)

// ErrTableNotFound is returned when the requested table does not exist in
// the target schema.
var ErrTableNotFound = errors.New("table not found")

// Provider resolves live table handles by schema and table name.
// Implemented by MySQL for live servers and MemCatalog for tests.
type Provider interface {
	Table(ctx context.Context, schema, table string) (statsmeta.Table, error)
}

// catalogName is the fixed name of the single catalog a MySQL server
// exposes. Mirrors the "def" catalog information_schema reports.
const catalogName = "def"

const tableInfoSQL = `
SELECT ENGINE, TABLE_TYPE, TABLE_ROWS
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
`

const innodbTableIDSQL = `
SELECT TABLE_ID
FROM information_schema.INNODB_TABLES
WHERE NAME = ?
`

const innodbIndexesSQL = `
SELECT i.INDEX_ID
FROM information_schema.INNODB_INDEXES i
JOIN information_schema.INNODB_TABLES t ON i.TABLE_ID = t.TABLE_ID
WHERE t.NAME = ?
  AND i.NAME NOT IN ('PRIMARY', 'GEN_CLUST_INDEX')
ORDER BY i.INDEX_ID
`

const columnsSQL = `
SELECT COLUMN_NAME, DATA_TYPE
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION
`

// MySQL resolves table handles against a live MySQL server.
type MySQL struct {
	db     *sql.DB
	logger *logger.Logger
}

// New creates a MySQL catalog backed by the given connection.
func New(db *sql.DB, log *logger.Logger) (*MySQL, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &MySQL{db: db, logger: log}, nil
}

// Table resolves a schema-qualified table into a snapshot handle.
//
// Identity comes from information_schema.INNODB_TABLES where available;
// tables without an InnoDB id (views, non-InnoDB engines) fall back to a
// stable hash of the qualified name so every handle has a usable id.
// Returns ErrTableNotFound when the table does not exist.
func (c *MySQL) Table(ctx context.Context, schema, table string) (statsmeta.Table, error) {
	var engine, tableType sql.NullString
	var tableRows sql.NullInt64

	err := c.db.QueryRowContext(ctx, tableInfoSQL, schema, table).Scan(&engine, &tableType, &tableRows)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, schema, table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table info for %s.%s: %w", schema, table, err)
	}

	managed := engine.Valid && engine.String == "InnoDB" &&
		tableType.Valid && tableType.String == "BASE TABLE"

	tableID, err := c.innodbTableID(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	if tableID == 0 {
		// No InnoDB id. Hash the qualified name so the handle still has
		// a stable identity across resolutions.
		tableID = hashID(schema + "/" + table)
	}

	indexIDs, err := c.liveIndexIDs(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	columns, err := c.tableColumns(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	c.logger.WithTable(schema+"."+table).Debugf(
		"resolved table id=%d managed=%v rows=%d indexes=%d columns=%d",
		tableID, managed, tableRows.Int64, len(indexIDs), columns.Len())

	return &TableRef{
		id:       tableID,
		name:     table,
		db:       databaseRef{id: hashID(schema), name: schema},
		managed:  managed,
		rowCount: tableRows.Int64,
		indexIDs: indexIDs,
		columns:  columns,
	}, nil
}

// innodbTableID looks up the InnoDB table id. Returns 0 without error when
// the table has no InnoDB entry.
func (c *MySQL) innodbTableID(ctx context.Context, schema, table string) (int64, error) {
	var id int64
	err := c.db.QueryRowContext(ctx, innodbTableIDSQL, schema+"/"+table).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query innodb table id for %s.%s: %w", schema, table, err)
	}
	return id, nil
}

// liveIndexIDs collects the secondary index ids currently defined on the
// table. The clustered index is excluded: freshness records only ever track
// secondary indexes.
func (c *MySQL) liveIndexIDs(ctx context.Context, schema, table string) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx, innodbIndexesSQL, schema+"/"+table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes for %s.%s: %w", schema, table, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			c.logger.Warnf("failed to close index rows: %v", cerr)
		}
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan index id for %s.%s: %w", schema, table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read indexes for %s.%s: %w", schema, table, err)
	}
	return ids, nil
}

// tableColumns reads the column schema in DDL order. The ordered map keeps
// ORDINAL_POSITION order while allowing by-name lookup on the handle.
func (c *MySQL) tableColumns(ctx context.Context, schema, table string) (*orderedmap.OrderedMap[string, statsmeta.ColumnType], error) {
	rows, err := c.db.QueryContext(ctx, columnsSQL, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns for %s.%s: %w", schema, table, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			c.logger.Warnf("failed to close column rows: %v", cerr)
		}
	}()

	columns := orderedmap.NewOrderedMap[string, statsmeta.ColumnType]()
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, fmt.Errorf("failed to scan column for %s.%s: %w", schema, table, err)
		}
		columns.Set(name, statsmeta.ColumnType(dataType))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns for %s.%s: %w", schema, table, err)
	}
	return columns, nil
}

// hashID derives a stable positive id from a name. Used for database ids
// and as a fallback table id when InnoDB does not supply one.
func hashID(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// TableRef is an immutable snapshot handle for a resolved table.
type TableRef struct {
	id       int64
	name     string
	db       databaseRef
	managed  bool
	rowCount int64
	indexIDs []int64
	columns  *orderedmap.OrderedMap[string, statsmeta.ColumnType]
}

// ID returns the table id.
func (t *TableRef) ID() int64 { return t.id }

// Name returns the unqualified table name.
func (t *TableRef) Name() string { return t.name }

// Database returns the owning database.
func (t *TableRef) Database() (statsmeta.Database, error) { return t.db, nil }

// Managed reports whether the table is an InnoDB base table.
func (t *TableRef) Managed() bool { return t.managed }

// RowCount returns the row count captured at resolution time.
func (t *TableRef) RowCount() int64 { return t.rowCount }

// IndexIDs returns the secondary index ids captured at resolution time.
func (t *TableRef) IndexIDs() ([]int64, error) { return t.indexIDs, nil }

// Schema returns the column schema in DDL order.
func (t *TableRef) Schema() ([]statsmeta.Column, error) {
	cols := make([]statsmeta.Column, 0, t.columns.Len())
	for el := t.columns.Front(); el != nil; el = el.Next() {
		cols = append(cols, statsmeta.Column{Name: el.Key, Type: el.Value})
	}
	return cols, nil
}

// ColumnType returns the declared type of a column by name.
func (t *TableRef) ColumnType(name string) (statsmeta.ColumnType, bool) {
	return t.columns.Get(name)
}

// databaseRef is the snapshot handle for the owning database.
type databaseRef struct {
	id   int64
	name string
}

func (d databaseRef) ID() int64                           { return d.id }
func (d databaseRef) Name() string                        { return d.name }
func (d databaseRef) Catalog() (statsmeta.Catalog, error) { return catalogRef{}, nil }

// catalogRef is the fixed "def" catalog every MySQL server exposes.
type catalogRef struct{}

func (catalogRef) ID() int64    { return 0 }
func (catalogRef) Name() string { return catalogName }
