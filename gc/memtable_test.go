package gc

// memTable, memScanner and memMutator are a deterministic in-memory Table
// implementation for exercising ScanMetadata and Reap without a real range
// server, per SPEC_FULL.md 4.E.
type memCell struct {
	row, cf, cq string
	ts          uint64
	value       []byte
}

type memTable struct {
	cells   []memCell
	mutator *memMutator // the last mutator CreateMutator handed out
}

func (t *memTable) CreateScanner(spec ScanSpec) (Scanner, error) {
	return &memScanner{cells: t.cells}, nil
}

func (t *memTable) CreateMutator() (Mutator, error) {
	t.mutator = &memMutator{}
	return t.mutator, nil
}

type memScanner struct {
	cells []memCell
	idx   int
}

func (s *memScanner) Next(c *Cell) bool {
	if s.idx >= len(s.cells) {
		return false
	}
	mc := s.cells[s.idx]
	*c = Cell{RowKey: mc.row, ColumnFamily: mc.cf, ColumnQualifier: mc.cq, Timestamp: mc.ts, Value: mc.value}
	s.idx++
	return true
}

func (s *memScanner) Err() error { return nil }

type memMutator struct {
	deletes []KeySpec
}

func (m *memMutator) SetDelete(timestamp uint64, key KeySpec) {
	m.deletes = append(m.deletes, key)
}

func (m *memMutator) Flush() error                   { return nil }
func (m *memMutator) Failed() []FailedMutation       { return nil }
func (m *memMutator) Retry(timeoutSeconds int) error { return nil }
