// Package gc implements the master's table-file garbage collector: a
// streaming scan of the METADATA table's Files column family folded into a
// reference count per file, followed by a two-pass reap of everything that
// reaches zero. Grounded on MasterGc.cc and TableMutator.h.
package gc

// Cell is one version of one column of one METADATA row, the unit the
// scanner streams. Mirrors the original's Cell struct (row_key,
// column_family, column_qualifier, timestamp, value).
type Cell struct {
	RowKey          string
	ColumnFamily    string
	ColumnQualifier string
	Timestamp       uint64
	Value           []byte
}

// KeySpec addresses a row, or a specific cell within a row, for a mutator
// delete. An empty ColumnFamily deletes the whole row.
type KeySpec struct {
	Row             string
	ColumnFamily    string
	ColumnQualifier string
}

// ScanSpec restricts a scan to a column family and row range. The GC always
// scans the Files column family across the full row range, excluding both
// endpoints, over every version (§4.E).
type ScanSpec struct {
	Columns           []string
	StartRow          string
	StartRowInclusive bool
	EndRow            string
	EndRowInclusive   bool
}

// Scanner streams cells in row-major, column-qualifier-major,
// newest-version-first order — the order the fold in §4.E depends on.
type Scanner interface {
	// Next advances to the next cell, writing it into cell and reporting
	// whether one was available. Returns false at end of scan or on error;
	// callers must check Err() afterward to distinguish the two.
	Next(cell *Cell) bool
	Err() error
}

// FailedMutation is one cell a mutator's Flush could not apply.
type FailedMutation struct {
	Key KeySpec
	Err error
}

// Mutator batches row/cell deletes and flushes them to range servers.
// Mirrors TableMutator's set_delete/flush/get_failed/retry contract
// (TableMutator.h): a 1MB per-range-server buffer in the original, opaque
// here behind the interface.
type Mutator interface {
	// SetDelete stages a delete of key as of timestamp. A KeySpec with no
	// ColumnFamily deletes the entire row.
	SetDelete(timestamp uint64, key KeySpec)

	// Flush sends staged deletes to their range servers. A non-nil error
	// means at least one cell failed; inspect Failed() and call Retry.
	Flush() error

	// Failed returns the mutations that did not apply on the last Flush or
	// Retry call.
	Failed() []FailedMutation

	// Retry resends Failed() mutations, waiting up to timeoutSeconds for
	// range servers to become reachable again.
	Retry(timeoutSeconds int) error
}

// Table is the METADATA table handle the GC is constructed against.
type Table interface {
	CreateScanner(spec ScanSpec) (Scanner, error)
	CreateMutator() (Mutator, error)
}
