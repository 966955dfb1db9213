// Package statsmeta provides analysis job descriptors for GoFresh.
package statsmeta

import (
	"encoding/json"
	"strings"
)

// JobType identifies what triggered an analysis job.
type JobType string

const (
	// JobTypeSystem marks jobs launched by the automatic scheduler.
	JobTypeSystem JobType = "SYSTEM"
	// JobTypeManual marks jobs launched explicitly by an operator.
	JobTypeManual JobType = "MANUAL"
)

// AnalysisMethod identifies how column data was read.
type AnalysisMethod string

const (
	MethodFull   AnalysisMethod = "FULL"
	MethodSample AnalysisMethod = "SAMPLE"
)

// AnalysisType identifies which statistics family a job computed.
type AnalysisType string

const (
	TypeFundamentals AnalysisType = "FUNDAMENTALS"
	TypeHistogram    AnalysisType = "HISTOGRAM"
)

// AnalysisJob describes a completed (or partially completed) analysis job
// as reported by the collection subsystem. It is the input to Reconcile.
//
// Columns is the authoritative list of analyzed column names. Payloads
// written by older releases carry the legacy bracketed text form instead
// ("[a, b]" under the colName tag); UnmarshalJSON converts those through
// ParseColumnList so that consumers only ever see the structured list.
type AnalysisJob struct {
	// TableUpdateTime is the table-update timestamp the job observed,
	// epoch milliseconds.
	TableUpdateTime int64 `json:"tblUpdateTime"`

	// UserInjected marks statistics supplied manually rather than
	// computed by a scan.
	UserInjected bool `json:"userInject"`

	// Columns lists the analyzed column names.
	Columns []string `json:"columns,omitempty"`

	Method  AnalysisMethod `json:"method"`
	Type    AnalysisType   `json:"type"`
	Trigger JobType        `json:"trigger"`

	// RowCount is the table row count the job observed.
	RowCount int64 `json:"rowCount"`

	// IndexRowCounts maps secondary-index id to the row count the job
	// observed for that index.
	IndexRowCounts map[int64]int64 `json:"indexesRowCount,omitempty"`

	// ColumnPartitions maps each analyzed column to the partitions the
	// job covered for it. Only the key set participates in the full
	// coverage check.
	ColumnPartitions map[string][]string `json:"colToPartitions,omitempty"`
}

// UnmarshalJSON accepts both the structured column list and the legacy
// bracketed text under the colName tag. When both are present the
// structured list wins.
func (j *AnalysisJob) UnmarshalJSON(data []byte) error {
	type alias AnalysisJob
	aux := struct {
		*alias
		ColName string `json:"colName"`
	}{alias: (*alias)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(j.Columns) == 0 && aux.ColName != "" {
		j.Columns = ParseColumnList(aux.ColName)
	}
	return nil
}

// ParseColumnList converts the legacy textual column-name encoding into a
// list of trimmed, non-empty names. The legacy form wraps a comma-separated
// list in a single pair of square brackets ("[a, b]"); input without the
// brackets is split as-is. Column names containing commas or brackets are
// not representable in this encoding, which is why serialized jobs now
// carry a structured list and this parser survives only as a compatibility
// adapter for old payloads. It never fails.
func ParseColumnList(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	parts := strings.Split(s, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}
