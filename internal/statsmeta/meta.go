// Package statsmeta provides table statistics freshness tracking for GoFresh.
//
// A TableMeta is the freshness record for one physical table: when the
// table, each of its columns, and each secondary index was last analyzed,
// how many rows changed since, and whether newly loaded partitions are
// still uncovered. The statistics scheduler and the optimizer's cost model
// both read this state to decide what is stale enough to re-analyze.
package statsmeta

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// UnknownIndexRowCount is returned by IndexRowCount for indexes with no
// recorded row count.
const UnknownIndexRowCount = int64(-1)

// NoIndexID is the IndexID value of records that are not index-specific.
const NoIndexID = int64(-1)

// TableMeta is the freshness record for a single table. One instance
// exists per tracked table, shared by reference between analysis-job
// completion handlers, optimizer read paths, and administrative callers;
// it must never be copied.
//
// Column and index state live in concurrent maps and the write-delta
// counters are atomics, so every method is safe to call concurrently with
// Reconcile. Concurrent Reconcile calls for the same table are tolerated
// with last-writer-wins semantics; the scheduler is still expected to
// serialize analysis jobs per table in normal operation.
type TableMeta struct {
	// Identity, immutable after construction.
	CatalogID    int64
	CatalogName  string
	DatabaseID   int64
	DatabaseName string
	TableID      int64
	TableName    string
	// IndexID is NoIndexID unless the record tracks a single
	// materialized index.
	IndexID int64

	updatedRows        atomic.Int64
	queriedTimes       atomic.Int64
	newPartitionLoaded atomic.Bool

	mu           sync.RWMutex // guards the scalar fields below
	rowCount     int64
	updatedTime  int64
	jobType      JobType
	userInjected bool

	columns   *xsync.MapOf[string, *ColumnMeta]
	indexRows *xsync.MapOf[int64, int64]
}

// NewTableMeta builds the freshness record for a table's first successful
// analysis: it captures the table's catalog identity, stores rowCount,
// then folds the job in via Reconcile. Identity resolution errors from the
// catalog layer propagate and no record is returned.
func NewTableMeta(rowCount int64, job *AnalysisJob, tbl Table) (*TableMeta, error) {
	db, err := tbl.Database()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database for table %q: %w", tbl.Name(), err)
	}
	ctl, err := db.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog for database %q: %w", db.Name(), err)
	}

	m := &TableMeta{
		CatalogID:    ctl.ID(),
		CatalogName:  ctl.Name(),
		DatabaseID:   db.ID(),
		DatabaseName: db.Name(),
		TableID:      tbl.ID(),
		TableName:    tbl.Name(),
		IndexID:      NoIndexID,
		columns:      xsync.NewMapOf[string, *ColumnMeta](),
		indexRows:    xsync.NewMapOf[int64, int64](),
	}
	m.rowCount = rowCount

	if err := m.Reconcile(job, tbl); err != nil {
		return nil, err
	}
	return m, nil
}

// Reconcile folds a completed analysis job into the record.
//
// The column entries named by the job are created or refreshed, the
// record's timestamp and trigger kind are adopted from the job, and, when
// a live table handle is supplied, table-level state is reconciled against
// the current catalog: managed tables adopt the job's row counts and purge
// per-index counts whose index no longer exists, a job covering every
// statistics-supported column resets the write-delta and the new-partition
// flag, and a manual non-injected job clears a previously injected
// record.
//
// tbl may be nil for callers without catalog access; only the column-level
// merge and trigger bookkeeping run in that case.
//
// Errors from the table handle propagate unmodified and leave all
// table-dependent state untouched. The column-level merge has already been
// committed at that point, which is acceptable since it does not depend on
// the handle.
func (m *TableMeta) Reconcile(job *AnalysisJob, tbl Table) error {
	m.mu.Lock()
	m.updatedTime = job.TableUpdateTime
	if job.UserInjected {
		m.userInjected = true
	}
	m.mu.Unlock()

	for _, col := range job.Columns {
		m.columns.Compute(col, func(old *ColumnMeta, loaded bool) (*ColumnMeta, bool) {
			if !loaded {
				return &ColumnMeta{
					UpdatedTime: job.TableUpdateTime,
					Method:      job.Method,
					Type:        job.Type,
					Trigger:     job.Trigger,
				}, false
			}
			return old.refreshed(job), false
		})
	}

	m.mu.Lock()
	m.jobType = job.Trigger
	m.mu.Unlock()

	if tbl == nil {
		return nil
	}

	// Resolve everything that can fail before committing any
	// table-dependent state, so a catalog error leaves the record as it
	// was.
	managed := tbl.Managed()
	var live map[int64]struct{}
	if managed {
		ids, err := tbl.IndexIDs()
		if err != nil {
			return fmt.Errorf("failed to resolve index ids for table %q: %w", tbl.Name(), err)
		}
		live = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			live[id] = struct{}{}
		}
	}
	schema, err := tbl.Schema()
	if err != nil {
		return fmt.Errorf("failed to resolve schema for table %q: %w", tbl.Name(), err)
	}

	if managed {
		m.mu.Lock()
		m.rowCount = job.RowCount
		m.mu.Unlock()

		for id, rows := range job.IndexRowCounts {
			m.indexRows.Store(id, rows)
		}
		// Indexes dropped since the last analysis leave stale entries
		// behind; purge every id absent from the live index set.
		m.indexRows.Range(func(id int64, _ int64) bool {
			if _, ok := live[id]; !ok {
				m.indexRows.Delete(id)
			}
			return true
		})
	}

	if coversAllSupported(job.ColumnPartitions, schema) {
		m.updatedRows.Store(0)
		m.newPartitionLoaded.Store(false)
	}

	m.mu.Lock()
	if m.jobType == JobTypeManual && !job.UserInjected {
		m.userInjected = false
	}
	m.mu.Unlock()

	return nil
}

// coversAllSupported reports whether the job's partition-coverage key set
// spans every statistics-supported column of the base schema.
func coversAllSupported(covered map[string][]string, schema []Column) bool {
	for _, col := range schema {
		if !col.Type.SupportsStats() {
			continue
		}
		if _, ok := covered[col.Name]; !ok {
			return false
		}
	}
	return true
}

// ColumnLastUpdateTime returns the last reconciliation time recorded for
// col. Zero means the column was never analyzed; it is a sentinel, not an
// error.
func (m *TableMeta) ColumnLastUpdateTime(col string) int64 {
	if cm, ok := m.columns.Load(col); ok {
		return cm.UpdatedTime
	}
	return 0
}

// Column returns the freshness entry for col.
func (m *TableMeta) Column(col string) (*ColumnMeta, bool) {
	return m.columns.Load(col)
}

// RemoveColumn drops the entry for col, typically after the column itself
// was dropped from the schema.
func (m *TableMeta) RemoveColumn(col string) {
	m.columns.Delete(col)
}

// RemoveAllColumns drops every column entry.
func (m *TableMeta) RemoveAllColumns() {
	m.columns.Clear()
}

// AnalyzedColumns returns a sorted snapshot of the tracked column names.
func (m *TableMeta) AnalyzedColumns() []string {
	cols := make([]string, 0, m.columns.Size())
	m.columns.Range(func(name string, _ *ColumnMeta) bool {
		cols = append(cols, name)
		return true
	})
	sort.Strings(cols)
	return cols
}

// IndexRowCount returns the row count recorded for a secondary index, or
// UnknownIndexRowCount when the index has none.
func (m *TableMeta) IndexRowCount(indexID int64) int64 {
	if rows, ok := m.indexRows.Load(indexID); ok {
		return rows
	}
	return UnknownIndexRowCount
}

// IndexRowCounts returns a snapshot of every recorded per-index row count.
func (m *TableMeta) IndexRowCounts() map[int64]int64 {
	counts := make(map[int64]int64, m.indexRows.Size())
	m.indexRows.Range(func(id int64, rows int64) bool {
		counts[id] = rows
		return true
	})
	return counts
}

// ClearIndexRowCounts drops every per-index row count.
func (m *TableMeta) ClearIndexRowCounts() {
	m.indexRows.Clear()
}

// Reset zeroes the record's reconciliation timestamp and every column
// entry's write-delta. The entries themselves are kept.
func (m *TableMeta) Reset() {
	m.mu.Lock()
	m.updatedTime = 0
	m.mu.Unlock()

	m.columns.Range(func(name string, _ *ColumnMeta) bool {
		m.columns.Compute(name, func(old *ColumnMeta, loaded bool) (*ColumnMeta, bool) {
			if !loaded {
				return nil, true
			}
			return old.cleared(), false
		})
		return true
	})
}

// RowCount returns the last known row count. It is authoritative only for
// managed tables.
func (m *TableMeta) RowCount() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rowCount
}

// UpdatedTime returns the timestamp of the most recent reconciliation,
// epoch milliseconds. Zero means never reconciled (or reset).
func (m *TableMeta) UpdatedTime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updatedTime
}

// JobType returns the trigger kind of the most recent reconciliation.
func (m *TableMeta) JobType() JobType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobType
}

// UserInjected reports whether the current statistics were supplied
// manually rather than computed.
func (m *TableMeta) UserInjected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userInjected
}

// UpdatedRows returns the rows changed since the last full-coverage
// analysis.
func (m *TableMeta) UpdatedRows() int64 {
	return m.updatedRows.Load()
}

// QueriedTimes returns the advisory query-frequency counter.
func (m *TableMeta) QueriedTimes() int64 {
	return m.queriedTimes.Load()
}

// NewPartitionLoaded reports whether partitions were loaded that
// statistics do not yet cover.
func (m *TableMeta) NewPartitionLoaded() bool {
	return m.newPartitionLoaded.Load()
}

// AddUpdatedRows accumulates a write-delta reported by an external hook
// and returns the new total.
func (m *TableMeta) AddUpdatedRows(n int64) int64 {
	return m.updatedRows.Add(n)
}

// AddColumnUpdatedRows attributes a write-delta to a single tracked
// column. Untracked columns are ignored.
func (m *TableMeta) AddColumnUpdatedRows(col string, n int64) {
	m.columns.Compute(col, func(old *ColumnMeta, loaded bool) (*ColumnMeta, bool) {
		if !loaded {
			return nil, true
		}
		cp := *old
		cp.UpdatedRows += n
		return &cp, false
	})
}

// IncQueriedTimes bumps the advisory query-frequency counter and returns
// the new total.
func (m *TableMeta) IncQueriedTimes() int64 {
	return m.queriedTimes.Add(1)
}

// MarkNewPartitionLoaded flags that partitions were loaded which
// statistics do not yet cover. The flag clears on the next full-coverage
// reconciliation.
func (m *TableMeta) MarkNewPartitionLoaded() {
	m.newPartitionLoaded.Store(true)
}
