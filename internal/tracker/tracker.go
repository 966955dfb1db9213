// Package tracker provides the freshness record registry for GoFresh.
//
// The Tracker owns the in-memory map of freshness records keyed by table
// id, feeds completed analysis jobs into them, accepts workload hooks from
// query and write paths, and persists every mutation through a RecordStore.
// One Tracker instance serves a whole process; records are shared by
// reference with readers.
package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dbsmedya/gofresh/internal/config"
	"github.com/dbsmedya/gofresh/internal/lock"
	"github.com/dbsmedya/gofresh/internal/logger"
	"github.com/dbsmedya/gofresh/internal/statsmeta"
)

// ErrUntracked is returned by administrative operations that target a
// table without a freshness record.
var ErrUntracked = errors.New("table is not tracked")

// RecordStore persists freshness records. Implemented by store.Store;
// tests substitute an in-memory fake.
type RecordStore interface {
	Save(ctx context.Context, meta *statsmeta.TableMeta) error
	LoadAll(ctx context.Context) ([]*statsmeta.TableMeta, error)
	Delete(ctx context.Context, tableID int64) error
}

// Tracker is the registry of freshness records for tracked tables.
type Tracker struct {
	tables *xsync.MapOf[int64, *statsmeta.TableMeta]
	store  RecordStore
	lockDB *sql.DB // optional; serializes cross-process writers when set
	logger *logger.Logger
	cfg    config.TrackingConfig
}

// New creates a tracker over the given record store.
func New(store RecordStore, log *logger.Logger, cfg config.TrackingConfig) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Tracker{
		tables: xsync.NewMapOf[int64, *statsmeta.TableMeta](),
		store:  store,
		logger: log,
		cfg:    cfg,
	}, nil
}

// SetLockDB enables per-table advisory locking around reconcile-and-persist.
// Without a lock connection, writers in other processes are not serialized.
func (t *Tracker) SetLockDB(db *sql.DB) {
	t.lockDB = db
}

// Hydrate loads every persisted record into the registry, replacing its
// current contents. Call once at startup before accepting hooks.
func (t *Tracker) Hydrate(ctx context.Context) error {
	metas, err := t.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to hydrate tracker: %w", err)
	}

	t.tables.Clear()
	for _, m := range metas {
		t.tables.Store(m.TableID, m)
	}

	t.logger.Infof("Hydrated %d freshness records", len(metas))
	return nil
}

// OnJobFinished folds a completed analysis job into the table's freshness
// record and persists the result. The record is created on the table's
// first analysis.
//
// When a lock connection is configured, the reconcile-and-persist pair runs
// under the table's advisory lock so that writers in other processes are
// serialized.
func (t *Tracker) OnJobFinished(ctx context.Context, job *statsmeta.AnalysisJob, tbl statsmeta.Table) error {
	if t.lockDB == nil {
		return t.applyJob(ctx, job, tbl)
	}

	tableLock := lock.NewTableLock(t.lockDB, tbl.ID())
	return tableLock.WithLock(ctx, t.cfg.LockTimeoutSeconds, func() error {
		return t.applyJob(ctx, job, tbl)
	})
}

// applyJob performs the find-or-create, reconcile and persist steps.
func (t *Tracker) applyJob(ctx context.Context, job *statsmeta.AnalysisJob, tbl statsmeta.Table) error {
	meta, ok := t.tables.Load(tbl.ID())
	if ok {
		if err := meta.Reconcile(job, tbl); err != nil {
			return fmt.Errorf("failed to reconcile table %q: %w", tbl.Name(), err)
		}
	} else {
		created, err := statsmeta.NewTableMeta(job.RowCount, job, tbl)
		if err != nil {
			return fmt.Errorf("failed to create record for table %q: %w", tbl.Name(), err)
		}
		existing, raced := t.tables.LoadOrStore(tbl.ID(), created)
		if raced {
			// Another job finished first; fold this one into its record.
			if err := existing.Reconcile(job, tbl); err != nil {
				return fmt.Errorf("failed to reconcile table %q: %w", tbl.Name(), err)
			}
		}
		meta = existing
	}

	if err := t.store.Save(ctx, meta); err != nil {
		return fmt.Errorf("failed to persist record for table %q: %w", tbl.Name(), err)
	}

	t.logger.WithTable(meta.DatabaseName + "." + meta.TableName).WithTrigger(string(job.Trigger)).Infof(
		"Reconciled analysis job (columns: %d, rows: %d, health: %d)",
		len(job.Columns), meta.RowCount(), t.Health(meta))
	return nil
}

// Get returns the freshness record for a table id.
func (t *Tracker) Get(tableID int64) (*statsmeta.TableMeta, bool) {
	return t.tables.Load(tableID)
}

// FindByName returns the record matching a database and table name. Names
// are how operators address tables; ids are how the registry stores them.
func (t *Tracker) FindByName(database, table string) (*statsmeta.TableMeta, bool) {
	var found *statsmeta.TableMeta
	t.tables.Range(func(_ int64, m *statsmeta.TableMeta) bool {
		if m.DatabaseName == database && m.TableName == table {
			found = m
			return false
		}
		return true
	})
	return found, found != nil
}

// Snapshot returns every tracked record sorted by table id.
func (t *Tracker) Snapshot() []*statsmeta.TableMeta {
	metas := make([]*statsmeta.TableMeta, 0, t.tables.Size())
	t.tables.Range(func(_ int64, m *statsmeta.TableMeta) bool {
		metas = append(metas, m)
		return true
	})
	sort.Slice(metas, func(i, j int) bool { return metas[i].TableID < metas[j].TableID })
	return metas
}

// Size returns the number of tracked tables.
func (t *Tracker) Size() int {
	return t.tables.Size()
}

// RecordQuery bumps the query-frequency counter for a tracked table.
// Untracked tables are ignored.
func (t *Tracker) RecordQuery(tableID int64) {
	if m, ok := t.tables.Load(tableID); ok {
		m.IncQueriedTimes()
	}
}

// RecordRowChange accumulates a write-delta for a tracked table. Untracked
// tables are ignored.
func (t *Tracker) RecordRowChange(tableID int64, delta int64) {
	if m, ok := t.tables.Load(tableID); ok {
		m.AddUpdatedRows(delta)
	}
}

// RecordColumnRowChange attributes a write-delta to a single column of a
// tracked table. The table-level delta is reported separately through
// RecordRowChange; columns without an entry are ignored.
func (t *Tracker) RecordColumnRowChange(tableID int64, col string, delta int64) {
	if m, ok := t.tables.Load(tableID); ok {
		m.AddColumnUpdatedRows(col, delta)
	}
}

// MarkPartitionLoaded flags a tracked table as having loaded partitions
// that statistics do not yet cover. Untracked tables are ignored.
func (t *Tracker) MarkPartitionLoaded(tableID int64) {
	if m, ok := t.tables.Load(tableID); ok {
		m.MarkNewPartitionLoaded()
	}
}

// Forget drops a table's record from the registry and the store. Used when
// the table itself was dropped.
func (t *Tracker) Forget(ctx context.Context, tableID int64) error {
	t.tables.Delete(tableID)
	if err := t.store.Delete(ctx, tableID); err != nil {
		return fmt.Errorf("failed to forget table %d: %w", tableID, err)
	}
	t.logger.Infof("Forgot freshness record for table %d", tableID)
	return nil
}

// Reset zeroes a table's reconciliation state and persists the result.
// Returns ErrUntracked for unknown tables.
func (t *Tracker) Reset(ctx context.Context, tableID int64) error {
	m, ok := t.tables.Load(tableID)
	if !ok {
		return fmt.Errorf("%w: table %d", ErrUntracked, tableID)
	}

	m.Reset()
	if err := t.store.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to persist reset for table %d: %w", tableID, err)
	}

	t.logger.WithTable(m.DatabaseName + "." + m.TableName).Info("Reset freshness record")
	return nil
}

// Purge drops a table's column entries and per-index row counts, keeping
// the record itself, and persists the result. Returns ErrUntracked for
// unknown tables.
func (t *Tracker) Purge(ctx context.Context, tableID int64) error {
	m, ok := t.tables.Load(tableID)
	if !ok {
		return fmt.Errorf("%w: table %d", ErrUntracked, tableID)
	}

	m.RemoveAllColumns()
	m.ClearIndexRowCounts()
	if err := t.store.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to persist purge for table %d: %w", tableID, err)
	}

	t.logger.WithTable(m.DatabaseName + "." + m.TableName).Info("Purged column and index state")
	return nil
}
