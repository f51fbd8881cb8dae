package gc

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hypertable-io/rangestore/internal/errkind"
)

// FixtureTable is an in-memory Table loaded from a tab-separated dump of
// METADATA cells, for driving cmd/mastergc against a recorded snapshot
// instead of a live range-server RPC connection — the RPC handlers §6
// leaves out of scope entirely. Each line is
// "row\tcolumn_family\tcolumn_qualifier\ttimestamp\tvalue", with \n and \t
// inside value escaped as "\\n"/"\\t". Deletes issued against it by
// ScanMetadata's mutator are applied in memory but never persisted back to
// the fixture file.
type FixtureTable struct {
	cells []Cell
}

// LoadFixtureTable parses r into a FixtureTable, sorting cells into the row
// / column-qualifier / newest-version-first order CreateScanner depends on.
func LoadFixtureTable(r io.Reader) (*FixtureTable, error) {
	var cells []Cell
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, errkind.Newf(errkind.ErrInvalidFixture, "malformed fixture line: %q", line)
		}
		ts, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return nil, errkind.Newf(errkind.ErrInvalidFixture, "bad timestamp in fixture line: %q", line)
		}
		cells = append(cells, Cell{
			RowKey:          fields[0],
			ColumnFamily:    fields[1],
			ColumnQualifier: fields[2],
			Timestamp:       ts,
			Value:           []byte(unescapeFixture(fields[4])),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.RowKey != b.RowKey {
			return a.RowKey < b.RowKey
		}
		if a.ColumnQualifier != b.ColumnQualifier {
			return a.ColumnQualifier < b.ColumnQualifier
		}
		return a.Timestamp > b.Timestamp
	})

	return &FixtureTable{cells: cells}, nil
}

func unescapeFixture(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}

func (t *FixtureTable) CreateScanner(spec ScanSpec) (Scanner, error) {
	cols := make(map[string]bool, len(spec.Columns))
	for _, c := range spec.Columns {
		cols[c] = true
	}
	var matched []Cell
	for _, c := range t.cells {
		if len(cols) > 0 && !cols[c.ColumnFamily] {
			continue
		}
		if spec.StartRow != "" {
			if spec.StartRowInclusive && c.RowKey < spec.StartRow {
				continue
			}
			if !spec.StartRowInclusive && c.RowKey <= spec.StartRow {
				continue
			}
		}
		if spec.EndRow != "" {
			if spec.EndRowInclusive && c.RowKey > spec.EndRow {
				continue
			}
			if !spec.EndRowInclusive && c.RowKey >= spec.EndRow {
				continue
			}
		}
		matched = append(matched, c)
	}
	return &fixtureScanner{cells: matched}, nil
}

func (t *FixtureTable) CreateMutator() (Mutator, error) {
	return &fixtureMutator{table: t}, nil
}

type fixtureScanner struct {
	cells []Cell
	idx   int
}

func (s *fixtureScanner) Next(cell *Cell) bool {
	if s.idx >= len(s.cells) {
		return false
	}
	*cell = s.cells[s.idx]
	s.idx++
	return true
}

func (s *fixtureScanner) Err() error { return nil }

// fixtureMutator applies deletes directly against the owning table's cell
// slice; Retry/Failed are no-ops since an in-memory delete cannot fail.
type fixtureMutator struct {
	table   *FixtureTable
	deletes []KeySpec
}

func (m *fixtureMutator) SetDelete(timestamp uint64, key KeySpec) {
	m.deletes = append(m.deletes, key)
}

func (m *fixtureMutator) Flush() error {
	for _, key := range m.deletes {
		kept := m.table.cells[:0]
		for _, c := range m.table.cells {
			if c.RowKey != key.Row {
				kept = append(kept, c)
				continue
			}
			if key.ColumnFamily == "" {
				continue // whole-row delete
			}
			if c.ColumnFamily == key.ColumnFamily && (key.ColumnQualifier == "" || c.ColumnQualifier == key.ColumnQualifier) {
				continue
			}
			kept = append(kept, c)
		}
		m.table.cells = kept
	}
	m.deletes = nil
	return nil
}

func (m *fixtureMutator) Failed() []FailedMutation       { return nil }
func (m *fixtureMutator) Retry(timeoutSeconds int) error { return nil }
