package domain

import "time"

// StorageMode controls how a batch is reconciled against stored rows.
type StorageMode string

const (
	// ModeInsertNew inserts only rows whose primary key is not yet stored.
	ModeInsertNew StorageMode = "insert"
	// ModeReplace deletes the covered date range first, then inserts all rows.
	ModeReplace StorageMode = "replace"
	// ModeDedupInsert deletes colliding primary keys before inserting,
	// keeping the batch's version of each row.
	ModeDedupInsert StorageMode = "dedup"
)

// ParseStorageMode maps a CLI/config string to a StorageMode.
func ParseStorageMode(s string) (StorageMode, bool) {
	switch StorageMode(s) {
	case ModeInsertNew, ModeReplace, ModeDedupInsert:
		return StorageMode(s), true
	case "":
		return ModeInsertNew, true
	}
	return "", false
}

// UnitKind identifies which parameter shape a FetchUnit carries.
type UnitKind string

const (
	UnitDay    UnitKind = "day"
	UnitRange  UnitKind = "range"
	UnitPaging UnitKind = "paging"
)

// FetchUnit is one unit of sync work: a concrete parameter set for a single
// remote call sequence against one table. Units are produced by the planner
// and never persisted.
type FetchUnit struct {
	Table     string
	Kind      UnitKind
	TradeDate string
	StartDate string
	EndDate   string
	// Params is the fully built remote parameter set, date params included.
	Params map[string]string
	// GridParams is the grid-axis subset of Params (fixed and required
	// parameters, without dates). Replace deletes are scoped by it so
	// sibling grid units never clear each other's rows.
	GridParams map[string]string
	// Watermark is the local max covered date; paging units stop once a page
	// no longer contains anything newer.
	Watermark string
	PageSize  int
}

// Rows is a uniform-shape tabular result from the remote API.
type Rows struct {
	Fields []string
	Items  [][]any
}

func (r Rows) Len() int { return len(r.Items) }

// RecordBatch couples fetched rows with the unit that produced them.
// Memory-only; discarded once the writer consumes it.
type RecordBatch struct {
	Table  string
	Fields []string
	Rows   [][]any
	Unit   FetchUnit
}

func (b RecordBatch) Len() int    { return len(b.Rows) }
func (b RecordBatch) Empty() bool { return len(b.Rows) == 0 }

// Coverage is the per-table synchronization metadata. The zero value means
// the table has never been synced.
type Coverage struct {
	Table      string    `db:"table_name"`
	MinDate    string    `db:"min_date"`
	MaxDate    string    `db:"max_date"`
	RowCount   int64     `db:"row_count"`
	LastSynced time.Time `db:"last_synced"`
}

// ApplyOptions scope a write: replace-mode date bounds, an optional
// instrument code restriction, and column equality predicates narrowing
// the delete to one grid combination.
type ApplyOptions struct {
	StartDate string
	EndDate   string
	TSCode    string
	Scope     map[string]string
}

// WriteResult reports the outcome of one reconciliation apply.
type WriteResult struct {
	Written int
	Skipped int
}

// SyncStats accumulates per-table results across all units of a sync run.
type SyncStats struct {
	Table        string
	Written      int
	Skipped      int
	Failed       int // failed fetch units
	UnitsPlanned int
	UnitsFetched int
	Aborted      bool
	Err          error
}

// Report is the final summary of a sync run.
type Report struct {
	RunID    string
	Category string
	Started  time.Time
	Duration time.Duration
	Tables   []SyncStats
}

// OK reports whether every table completed with no failed units.
func (r *Report) OK() bool {
	for _, t := range r.Tables {
		if t.Aborted || t.Failed > 0 {
			return false
		}
	}
	return true
}

// Totals sums written/skipped/failed across all tables.
func (r *Report) Totals() (written, skipped, failed int) {
	for _, t := range r.Tables {
		written += t.Written
		skipped += t.Skipped
		failed += t.Failed
	}
	return written, skipped, failed
}
