package metalog

import "github.com/hypertable-io/rangestore/internal/errkind"

// SplitStart records that a split has begun: SplitOff is the new range
// being carved from Range(). Grounded on RangeServerMetaLogEntries.cc's
// SplitStart::write/read — write the common range payload, then the
// additional split_off RangeSpec; read does the same in the same order,
// wrapping any codec failure as "decoding split start" (spec.md §4.B).
type SplitStart struct {
	rangeCommon
	SplitOff RangeSpec
}

// NewSplitStart constructs a SplitStart entry ready to Write.
func NewSplitStart(table TableIdentifier, oldRange, newRange RangeSpec, state RangeState) *SplitStart {
	e := &SplitStart{SplitOff: newRange}
	e.table, e.rng, e.state = table, oldRange, state
	return e
}

func (e *SplitStart) Type() EntryType { return TypeSplitStart }

func (e *SplitStart) Write(buf *DynamicBuffer) {
	e.rangeCommon.write(buf)
	e.SplitOff.Write(buf)
}

func (e *SplitStart) Read(c *Cursor) error {
	if err := e.rangeCommon.read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding split start")
	}
	if err := e.SplitOff.Read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding split start")
	}
	return nil
}

// State returns the soft limit recorded for the post-split range at the
// moment the split began.
func (e *SplitStart) State() RangeState { return e.state }

// SplitShrunk records that the parent range has been shrunk to its
// post-split bounds (RangeNew). Folding it requires the transaction list to
// lead with SplitStart (invariant 1/3).
type SplitShrunk struct {
	rangeBase
}

// NewSplitShrunk constructs a SplitShrunk entry ready to Write.
func NewSplitShrunk(table TableIdentifier, rangeNew RangeSpec) *SplitShrunk {
	e := &SplitShrunk{}
	e.table, e.rng = table, rangeNew
	return e
}

func (e *SplitShrunk) Type() EntryType { return TypeSplitShrunk }

func (e *SplitShrunk) Write(buf *DynamicBuffer) { e.rangeBase.write(buf) }

func (e *SplitShrunk) Read(c *Cursor) error {
	if err := e.rangeBase.read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding split shrunk")
	}
	return nil
}

// SplitDone records that a split completed; no in-flight split transaction
// remains, and folding it clears the transaction list (invariant 2).
type SplitDone struct {
	rangeBase
}

// NewSplitDone constructs a SplitDone entry ready to Write.
func NewSplitDone(table TableIdentifier, r RangeSpec) *SplitDone {
	e := &SplitDone{}
	e.table, e.rng = table, r
	return e
}

func (e *SplitDone) Type() EntryType { return TypeSplitDone }

func (e *SplitDone) Write(buf *DynamicBuffer) { e.rangeBase.write(buf) }

func (e *SplitDone) Read(c *Cursor) error {
	if err := e.rangeBase.read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding split done")
	}
	return nil
}
