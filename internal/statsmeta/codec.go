// Package statsmeta provides the persisted wire form of freshness records
// for GoFresh.
package statsmeta

import (
	"encoding/json"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// tableMetaWire is the serialized form of TableMeta. The field tags are a
// stable on-disk contract shared with payloads written by older releases:
// tags are only ever added, never renamed or removed. Fields absent from
// an old payload decode to their zero value and are normalized afterwards.
type tableMetaWire struct {
	CatalogID          int64                  `json:"ctlId"`
	CatalogName        string                 `json:"ctln"`
	DatabaseID         int64                  `json:"dbId"`
	DatabaseName       string                 `json:"dbn"`
	TableID            int64                  `json:"tblId"`
	TableName          string                 `json:"tbln"`
	IndexID            int64                  `json:"idxId"`
	UpdatedRows        int64                  `json:"updatedRows"`
	QueriedTimes       int64                  `json:"queriedTimes"`
	RowCount           int64                  `json:"rowCount"`
	UpdatedTime        int64                  `json:"updateTime"`
	Columns            map[string]*ColumnMeta `json:"colNameToColStatsMeta"`
	JobType            JobType                `json:"trigger"`
	NewPartitionLoaded bool                   `json:"newPartitionLoaded"`
	UserInjected       bool                   `json:"userInjected"`
	IndexRowCounts     map[int64]int64        `json:"irc"`
}

// MarshalJSON serializes the record under its stable field tags. The
// atomic counters and concurrent maps are snapshotted one by one; writers
// landing between individual snapshots are tolerated, mirroring the
// record's own consistency model.
func (m *TableMeta) MarshalJSON() ([]byte, error) {
	w := tableMetaWire{
		CatalogID:          m.CatalogID,
		CatalogName:        m.CatalogName,
		DatabaseID:         m.DatabaseID,
		DatabaseName:       m.DatabaseName,
		TableID:            m.TableID,
		TableName:          m.TableName,
		IndexID:            m.IndexID,
		UpdatedRows:        m.updatedRows.Load(),
		QueriedTimes:       m.queriedTimes.Load(),
		NewPartitionLoaded: m.newPartitionLoaded.Load(),
		Columns:            make(map[string]*ColumnMeta, m.columns.Size()),
		IndexRowCounts:     make(map[int64]int64, m.indexRows.Size()),
	}

	m.mu.RLock()
	w.RowCount = m.rowCount
	w.UpdatedTime = m.updatedTime
	w.JobType = m.jobType
	w.UserInjected = m.userInjected
	m.mu.RUnlock()

	m.columns.Range(func(name string, cm *ColumnMeta) bool {
		w.Columns[name] = cm
		return true
	})
	m.indexRows.Range(func(id int64, rows int64) bool {
		w.IndexRowCounts[id] = rows
		return true
	})

	return json.Marshal(w)
}

// UnmarshalJSON reconstructs a record from its serialized form. A
// malformed payload returns an error without touching the receiver. After
// decoding, normalize runs unconditionally so that payloads from releases
// predating the index row counts, the new-partition flag, or the column
// map load with empty maps and a cleared flag rather than nil references.
func (m *TableMeta) UnmarshalJSON(data []byte) error {
	var w tableMetaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode freshness record: %w", err)
	}

	m.CatalogID = w.CatalogID
	m.CatalogName = w.CatalogName
	m.DatabaseID = w.DatabaseID
	m.DatabaseName = w.DatabaseName
	m.TableID = w.TableID
	m.TableName = w.TableName
	m.IndexID = w.IndexID

	m.updatedRows.Store(w.UpdatedRows)
	m.queriedTimes.Store(w.QueriedTimes)
	m.newPartitionLoaded.Store(w.NewPartitionLoaded)

	m.mu.Lock()
	m.rowCount = w.RowCount
	m.updatedTime = w.UpdatedTime
	m.jobType = w.JobType
	m.userInjected = w.UserInjected
	m.mu.Unlock()

	m.columns = nil
	m.indexRows = nil
	if w.Columns != nil {
		m.columns = xsync.NewMapOf[string, *ColumnMeta]()
		for name, cm := range w.Columns {
			if cm != nil {
				m.columns.Store(name, cm)
			}
		}
	}
	if w.IndexRowCounts != nil {
		m.indexRows = xsync.NewMapOf[int64, int64]()
		for id, rows := range w.IndexRowCounts {
			m.indexRows.Store(id, rows)
		}
	}
	m.normalize()

	return nil
}

// normalize applies the defaults schema evolution requires: reference
// fields absent from older payloads come back as empty maps, never nil.
// It must run after every decode, regardless of which fields the payload
// carried.
func (m *TableMeta) normalize() {
	if m.columns == nil {
		m.columns = xsync.NewMapOf[string, *ColumnMeta]()
	}
	if m.indexRows == nil {
		m.indexRows = xsync.NewMapOf[int64, int64]()
	}
}
