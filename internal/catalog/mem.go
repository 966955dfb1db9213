package catalog

import (
	"context"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gofresh/internal/statsmeta"
)

// MemCatalog is an in-memory Provider for tests and synthetic workloads.
// Tables are registered up front and resolved by schema-qualified name.
type MemCatalog struct {
	tables map[string]*MemTable
}

// NewMemCatalog creates an empty in-memory catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{tables: make(map[string]*MemTable)}
}

// Add registers a table under its database and table name. Re-adding the
// same qualified name replaces the previous handle.
func (c *MemCatalog) Add(t *MemTable) *MemCatalog {
	c.tables[t.dbName+"."+t.name] = t
	return c
}

// Table resolves a registered table. Returns ErrTableNotFound for names
// that were never added.
func (c *MemCatalog) Table(_ context.Context, schema, table string) (statsmeta.Table, error) {
	t, ok := c.tables[schema+"."+table]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, schema, table)
	}
	return t, nil
}

// MemTable is an in-memory statsmeta.Table built with chained setters.
// The zero builder is a managed table in database "test" (id 1) under the
// default catalog; Fail arms make individual accessors return errors.
type MemTable struct {
	id       int64
	name     string
	dbID     int64
	dbName   string
	ctlID    int64
	ctlName  string
	managed  bool
	rowCount int64
	indexIDs []int64
	columns  *orderedmap.OrderedMap[string, statsmeta.ColumnType]

	dbErr     error
	schemaErr error
	indexErr  error
}

// NewMemTable creates a managed in-memory table with the given identity.
func NewMemTable(id int64, name string) *MemTable {
	return &MemTable{
		id:      id,
		name:    name,
		dbID:    1,
		dbName:  "test",
		ctlName: catalogName,
		managed: true,
		columns: orderedmap.NewOrderedMap[string, statsmeta.ColumnType](),
	}
}

// WithDatabase sets the owning database identity.
func (m *MemTable) WithDatabase(id int64, name string) *MemTable {
	m.dbID, m.dbName = id, name
	return m
}

// WithCatalog sets the owning catalog identity.
func (m *MemTable) WithCatalog(id int64, name string) *MemTable {
	m.ctlID, m.ctlName = id, name
	return m
}

// WithSchema appends columns to the schema. Setting a column name twice
// overrides its type without changing its position.
func (m *MemTable) WithSchema(cols ...statsmeta.Column) *MemTable {
	for _, col := range cols {
		m.columns.Set(col.Name, col.Type)
	}
	return m
}

// WithIndexIDs sets the live secondary index ids.
func (m *MemTable) WithIndexIDs(ids ...int64) *MemTable {
	m.indexIDs = ids
	return m
}

// WithRowCount sets the row-count estimate.
func (m *MemTable) WithRowCount(n int64) *MemTable {
	m.rowCount = n
	return m
}

// External marks the table as not internally managed.
func (m *MemTable) External() *MemTable {
	m.managed = false
	return m
}

// FailDatabase makes Database return the given error.
func (m *MemTable) FailDatabase(err error) *MemTable {
	m.dbErr = err
	return m
}

// FailSchema makes Schema return the given error.
func (m *MemTable) FailSchema(err error) *MemTable {
	m.schemaErr = err
	return m
}

// FailIndexes makes IndexIDs return the given error.
func (m *MemTable) FailIndexes(err error) *MemTable {
	m.indexErr = err
	return m
}

// ID returns the table id.
func (m *MemTable) ID() int64 { return m.id }

// Name returns the table name.
func (m *MemTable) Name() string { return m.name }

// Database returns the owning database.
func (m *MemTable) Database() (statsmeta.Database, error) {
	if m.dbErr != nil {
		return nil, m.dbErr
	}
	return memDatabase{id: m.dbID, name: m.dbName, ctlID: m.ctlID, ctlName: m.ctlName}, nil
}

// Managed reports whether the table is internally managed.
func (m *MemTable) Managed() bool { return m.managed }

// RowCount returns the row-count estimate.
func (m *MemTable) RowCount() int64 { return m.rowCount }

// IndexIDs returns the live secondary index ids.
func (m *MemTable) IndexIDs() ([]int64, error) {
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return m.indexIDs, nil
}

// Schema returns the column schema in insertion order.
func (m *MemTable) Schema() ([]statsmeta.Column, error) {
	if m.schemaErr != nil {
		return nil, m.schemaErr
	}
	cols := make([]statsmeta.Column, 0, m.columns.Len())
	for el := m.columns.Front(); el != nil; el = el.Next() {
		cols = append(cols, statsmeta.Column{Name: el.Key, Type: el.Value})
	}
	return cols, nil
}

// ColumnType returns the declared type of a column by name.
func (m *MemTable) ColumnType(name string) (statsmeta.ColumnType, bool) {
	return m.columns.Get(name)
}

// memDatabase is the in-memory owning database handle.
type memDatabase struct {
	id      int64
	name    string
	ctlID   int64
	ctlName string
}

func (d memDatabase) ID() int64    { return d.id }
func (d memDatabase) Name() string { return d.name }

func (d memDatabase) Catalog() (statsmeta.Catalog, error) {
	return memCatalogRef{id: d.ctlID, name: d.ctlName}, nil
}

// memCatalogRef is the in-memory catalog handle.
type memCatalogRef struct {
	id   int64
	name string
}

func (c memCatalogRef) ID() int64    { return c.id }
func (c memCatalogRef) Name() string { return c.name }
