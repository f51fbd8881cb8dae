package metalog

// RangeLoaded records that a range is resident and serving. Folding it
// allocates a fresh RangeStateInfo (spec.md §3/§4.D); a duplicate key is
// corruption, logged and discarded (invariant 3).
type RangeLoaded struct {
	rangeCommon
}

// NewRangeLoaded constructs a RangeLoaded entry ready to Write.
func NewRangeLoaded(table TableIdentifier, r RangeSpec, state RangeState) *RangeLoaded {
	e := &RangeLoaded{}
	e.table, e.rng, e.state = table, r, state
	return e
}

func (e *RangeLoaded) Type() EntryType { return TypeRangeLoaded }

func (e *RangeLoaded) Write(buf *DynamicBuffer) { e.rangeCommon.write(buf) }

func (e *RangeLoaded) Read(c *Cursor) error { return e.rangeCommon.read(c) }

// State returns the range state carried at load time.
func (e *RangeLoaded) State() RangeState { return e.state }
