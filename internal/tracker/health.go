package tracker

import (
	"github.com/dbsmedya/gofresh/internal/statsmeta"
)

// Health scores a record's freshness from 0 (fully stale) to 100 (fresh).
//
// The score is the percentage of rows still covered by the last analysis:
// a table whose write-delta has reached its row count scores 0, an
// untouched table scores 100. Empty tables with a pending delta score 0,
// since any write invalidates statistics computed over zero rows.
func (t *Tracker) Health(m *statsmeta.TableMeta) int {
	rowCount := m.RowCount()
	updated := m.UpdatedRows()

	if rowCount <= 0 {
		if updated > 0 {
			return 0
		}
		return 100
	}
	if updated >= rowCount {
		return 0
	}

	health := 100 - int(100*updated/rowCount)
	if health < 0 {
		return 0
	}
	if health > 100 {
		return 100
	}
	return health
}

// NeedsAnalyze reports whether a table is due for re-analysis.
//
// A nil record always needs analysis. Tracked records need analysis when
// they were never reconciled (or were reset), when partitions were loaded
// that statistics do not cover, when the live schema has
// statistics-supported columns that were never analyzed, or when the
// health score falls below the configured threshold.
//
// tbl may be nil for callers without catalog access; the schema coverage
// check is skipped in that case.
func (t *Tracker) NeedsAnalyze(m *statsmeta.TableMeta, tbl statsmeta.Table) bool {
	if m == nil {
		return true
	}

	// With queried_only set, tables nobody reads are never
	// reported stale, whatever their write-delta.
	if t.cfg.QueriedOnly && m.QueriedTimes() == 0 {
		return false
	}

	if m.UpdatedTime() == 0 {
		return true
	}
	if m.NewPartitionLoaded() {
		return true
	}

	if tbl != nil {
		schema, err := tbl.Schema()
		if err != nil {
			t.logger.WithTable(m.DatabaseName + "." + m.TableName).Warnf(
				"Failed to resolve schema for coverage check: %v", err)
		} else {
			for _, col := range schema {
				if col.Type.SupportsStats() && m.ColumnLastUpdateTime(col.Name) == 0 {
					t.logger.WithTable(m.DatabaseName+"."+m.TableName).WithColumn(col.Name).
						Debug("Column was never analyzed; flagging table")
					return true
				}
			}
		}
	}

	return t.Health(m) < t.cfg.HealthThreshold
}
