// Package statsmeta provides per-column freshness entries for GoFresh.
package statsmeta

// ColumnMeta records the freshness of one analyzed column. Values held in
// a TableMeta column map are treated as immutable snapshots: reconciliation
// replaces the whole entry instead of mutating it, so a *ColumnMeta
// obtained from a lookup is safe to read without synchronization.
//
// The field tags are a stable serialization contract shared with payloads
// written by older releases; tags are only ever added, never renamed.
type ColumnMeta struct {
	// UpdatedTime is the timestamp of the last reconciliation that touched
	// this column, epoch milliseconds. Zero means never analyzed.
	UpdatedTime int64 `json:"updateTime"`

	// Method and Type record how and what the last job analyzed.
	Method AnalysisMethod `json:"method"`
	Type   AnalysisType   `json:"type"`

	// Trigger is the trigger kind recorded at column level. It may lag
	// the table-level value for columns the latest job did not touch.
	Trigger JobType `json:"trigger"`

	// UpdatedRows accumulates the write-delta attributed to this column
	// since its last analysis. Cleared by TableMeta.Reset.
	UpdatedRows int64 `json:"updatedRows"`
}

// refreshed returns a copy with the job's descriptor fields applied. The
// accumulated write-delta carries over unchanged.
func (c *ColumnMeta) refreshed(job *AnalysisJob) *ColumnMeta {
	cp := *c
	cp.UpdatedTime = job.TableUpdateTime
	cp.Method = job.Method
	cp.Type = job.Type
	cp.Trigger = job.Trigger
	return &cp
}

// cleared returns a copy with the write-delta zeroed.
func (c *ColumnMeta) cleared() *ColumnMeta {
	cp := *c
	cp.UpdatedRows = 0
	return &cp
}
