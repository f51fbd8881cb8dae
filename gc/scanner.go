package gc

import (
	"strings"

	"github.com/hypertable-io/rangestore/internal/errkind"
	"github.com/hypertable-io/rangestore/internal/rlog"
	"github.com/hypertable-io/rangestore/metalog"
)

// filesColumnFamily is the only column family the GC scans.
const filesColumnFamily = "Files"

// fileListSeparator delimits file names within a Files cell's value.
const fileListSeparator = ";\n"

const maxMutatorRetries = 3

// ScanMetadata drives a streaming scan of the METADATA table's Files column
// family and folds it into a reference-count map, deleting rows and cells
// that are fully superseded along the way. Grounded on
// GcWorker::scan_metadata in MasterGc.cc; the row/access-group/version state
// machine there is reproduced verbatim, just restated as a Go switch instead
// of the original's cascading if/else-if over string comparisons.
func ScanMetadata(table Table, dryrun bool, log rlog.Logger) (*CountMap, error) {
	if log == nil {
		log = rlog.Nop
	}

	spec := ScanSpec{
		Columns:           []string{filesColumnFamily},
		StartRow:          "",
		StartRowInclusive: false,
		EndRow:            metalog.EndRowMarker,
		EndRowInclusive:   false,
	}
	scanner, err := table.CreateScanner(spec)
	if err != nil {
		return nil, err
	}
	mutator, err := table.CreateMutator()
	if err != nil {
		return nil, err
	}

	filesMap := NewCountMap()

	var lastRow, lastCQ string
	var lastTime uint64
	foundValidFiles := true

	log.Debugf("MasterGc: scanning metadata...")

	var cell Cell
	for scanner.Next(&cell) {
		if cell.ColumnFamily != filesColumnFamily {
			log.Errorf("Unexpected column family %q while scanning METADATA", cell.ColumnFamily)
			continue
		}

		switch {
		case cell.RowKey != lastRow:
			if !foundValidFiles {
				deleteRow(lastRow, mutator, dryrun, log)
			}
			lastRow = cell.RowKey
			lastCQ = cell.ColumnQualifier
			lastTime = cell.Timestamp
			foundValidFiles = !isTombstone(cell.Value)
			if foundValidFiles {
				insertFiles(filesMap, cell.Value, 1)
			}

		case cell.ColumnQualifier != lastCQ:
			lastCQ = cell.ColumnQualifier
			lastTime = cell.Timestamp
			isValid := !isTombstone(cell.Value)
			foundValidFiles = foundValidFiles || isValid
			if isValid {
				insertFiles(filesMap, cell.Value, 1)
			}

		default:
			if cell.Timestamp > lastTime {
				log.Errorf("Unexpected timestamp order while scanning METADATA")
				continue
			}
			if !isTombstone(cell.Value) {
				insertFiles(filesMap, cell.Value, 0)
				deleteCell(cell, mutator, dryrun, log)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// for the last row
	if !foundValidFiles {
		deleteRow(lastRow, mutator, dryrun, log)
	}

	if err := flushMutator(mutator, log); err != nil {
		return nil, err
	}
	return filesMap, nil
}

func isTombstone(value []byte) bool {
	return len(value) > 0 && value[0] == '!'
}

// insertFiles parses a Files cell's value — names separated by the two-byte
// sequence ";\n", each optionally "#"-prefixed — and inserts every complete
// name into m with delta. A trailing fragment with no terminating separator
// is dropped, matching the original's `while (p < endp)` bound.
func insertFiles(m *CountMap, value []byte, delta int) {
	s := string(value)
	for {
		idx := strings.Index(s, fileListSeparator)
		if idx < 0 {
			return
		}
		name := strings.TrimPrefix(s[:idx], "#")
		if name != "" {
			m.Insert(name, delta)
		}
		s = s[idx+len(fileListSeparator):]
	}
}

func deleteRow(row string, mutator Mutator, dryrun bool, log rlog.Logger) {
	if row == "" {
		return
	}
	log.Debugf("MasterGc: deleting row %s", row)
	if !dryrun {
		mutator.SetDelete(0, KeySpec{Row: row})
	}
}

func deleteCell(cell Cell, mutator Mutator, dryrun bool, log rlog.Logger) {
	log.Debugf("MasterGc: deleting cell: (%s, %s, %s, %d)",
		cell.RowKey, cell.ColumnFamily, cell.ColumnQualifier, cell.Timestamp)
	if !dryrun {
		mutator.SetDelete(cell.Timestamp, KeySpec{
			Row:             cell.RowKey,
			ColumnFamily:    cell.ColumnFamily,
			ColumnQualifier: cell.ColumnQualifier,
		})
	}
}

// flushMutator flushes staged deletes, retrying failed cells up to
// maxMutatorRetries times per the retry(timeout)/get_failed() contract
// (spec.md §5) before giving up.
func flushMutator(mutator Mutator, log rlog.Logger) error {
	if err := mutator.Flush(); err != nil {
		log.Warningf("MasterGc: mutator flush error: %v", err)
	}
	for attempt := 0; len(mutator.Failed()) > 0; attempt++ {
		if attempt >= maxMutatorRetries {
			return errkind.Newf(errkind.ErrMutatorFailed,
				"gc: %d cells still failing after %d retries", len(mutator.Failed()), maxMutatorRetries)
		}
		if err := mutator.Retry(30); err != nil {
			log.Warningf("MasterGc: mutator retry error: %v", err)
		}
	}
	return nil
}
