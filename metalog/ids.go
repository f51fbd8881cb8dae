package metalog

// EndRowMarker is the sentinel end_row denoting a table's final range
// (spec.md §3's END_ROW_MARKER). It is chosen to compare greater than any
// legal row key under byte-lexicographic order.
const EndRowMarker = "\xff\xff"

// TableIdentifier identifies a logical table across schema evolutions.
type TableIdentifier struct {
	ID         uint32
	Generation uint32
}

// Write appends the wire encoding: u32 id, u32 generation.
func (t TableIdentifier) Write(buf *DynamicBuffer) {
	buf.PutUint32(t.ID)
	buf.PutUint32(t.Generation)
}

// Read decodes a TableIdentifier, advancing c.
func (t *TableIdentifier) Read(c *Cursor) error {
	id, err := c.GetUint32()
	if err != nil {
		return err
	}
	gen, err := c.GetUint32()
	if err != nil {
		return err
	}
	t.ID, t.Generation = id, gen
	return nil
}

// RangeSpec is a contiguous row-key interval: start_row exclusive, end_row
// inclusive. end_row == EndRowMarker denotes a table's final range.
type RangeSpec struct {
	StartRow string
	EndRow   string
}

// Write appends the wire encoding: u16-prefixed start_row, u16-prefixed
// end_row.
func (r RangeSpec) Write(buf *DynamicBuffer) {
	buf.PutString(r.StartRow)
	buf.PutString(r.EndRow)
}

// Read decodes a RangeSpec, advancing c.
func (r *RangeSpec) Read(c *Cursor) error {
	start, err := c.GetString()
	if err != nil {
		return err
	}
	end, err := c.GetString()
	if err != nil {
		return err
	}
	r.StartRow, r.EndRow = start, end
	return nil
}

// RangeState carries the size threshold that schedules a split, plus the
// scratch fields spec.md §3 leaves opaque to the reader's invariants:
// Timestamp (assignment time, round-tripped only) and TransferLog (the DFS
// path of an in-progress move's transfer log — §3 "(new)" move state, also
// round-tripped only, interpreted by no invariant in this module).
type RangeState struct {
	SoftLimit   uint64
	Timestamp   uint64
	TransferLog string
}

// Write appends the wire encoding: u64 soft_limit, u64 timestamp, u16-prefixed
// transfer_log.
func (s RangeState) Write(buf *DynamicBuffer) {
	buf.PutUint64(s.SoftLimit)
	buf.PutUint64(s.Timestamp)
	buf.PutString(s.TransferLog)
}

// Read decodes a RangeState, advancing c.
func (s *RangeState) Read(c *Cursor) error {
	soft, err := c.GetUint64()
	if err != nil {
		return err
	}
	ts, err := c.GetUint64()
	if err != nil {
		return err
	}
	log, err := c.GetString()
	if err != nil {
		return err
	}
	s.SoftLimit, s.Timestamp, s.TransferLog = soft, ts, log
	return nil
}

// rangeKey is the uniqueness key for a folded RangeStateInfo:
// (table.id, range.end_row), compared lexicographically on end_row per
// spec.md §4.D.
type rangeKey struct {
	tableID uint32
	endRow  string
}

func keyOf(table TableIdentifier, r RangeSpec) rangeKey {
	return rangeKey{tableID: table.ID, endRow: r.EndRow}
}

// less implements the ordering spec.md §4.D/§8 property 1 requires: by
// table.id, then lexicographically on end_row.
func (k rangeKey) less(o rangeKey) bool {
	if k.tableID != o.tableID {
		return k.tableID < o.tableID
	}
	return k.endRow < o.endRow
}
