package metalog

import "github.com/hypertable-io/rangestore/internal/errkind"

// MoveStart, MovePrepared and MoveDone implement the three-phase move the
// original declares but leaves TODO in RangeServerMetaLogReader.cc. §3/§9
// resolve the open question by analogy with the split trio: MoveStart
// records the destination's state (as SplitStart does for the new range),
// MovePrepared and MoveDone are markers requiring an in-flight MoveStart,
// and unlike split, the range's bounds never change — a move relocates a
// range, it does not resize it.

// MoveStart records that a move has begun.
type MoveStart struct {
	rangeCommon
}

// NewMoveStart constructs a MoveStart entry ready to Write.
func NewMoveStart(table TableIdentifier, r RangeSpec, state RangeState) *MoveStart {
	e := &MoveStart{}
	e.table, e.rng, e.state = table, r, state
	return e
}

func (e *MoveStart) Type() EntryType { return TypeMoveStart }

func (e *MoveStart) Write(buf *DynamicBuffer) { e.rangeCommon.write(buf) }

func (e *MoveStart) Read(c *Cursor) error {
	if err := e.rangeCommon.read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding move start")
	}
	return nil
}

// State returns the range state recorded when the move began.
func (e *MoveStart) State() RangeState { return e.state }

// MovePrepared records that the destination range server has prepared to
// take over the range (transfer log replayed, range ready to serve).
type MovePrepared struct {
	rangeBase
}

// NewMovePrepared constructs a MovePrepared entry ready to Write.
func NewMovePrepared(table TableIdentifier, r RangeSpec) *MovePrepared {
	e := &MovePrepared{}
	e.table, e.rng = table, r
	return e
}

func (e *MovePrepared) Type() EntryType { return TypeMovePrepared }

func (e *MovePrepared) Write(buf *DynamicBuffer) { e.rangeBase.write(buf) }

func (e *MovePrepared) Read(c *Cursor) error {
	if err := e.rangeBase.read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding move prepared")
	}
	return nil
}

// MoveDone records that a move completed; no in-flight move transaction
// remains.
type MoveDone struct {
	rangeBase
}

// NewMoveDone constructs a MoveDone entry ready to Write.
func NewMoveDone(table TableIdentifier, r RangeSpec) *MoveDone {
	e := &MoveDone{}
	e.table, e.rng = table, r
	return e
}

func (e *MoveDone) Type() EntryType { return TypeMoveDone }

func (e *MoveDone) Write(buf *DynamicBuffer) { e.rangeBase.write(buf) }

func (e *MoveDone) Read(c *Cursor) error {
	if err := e.rangeBase.read(c); err != nil {
		return errkind.Wrap(err, errkind.ErrMetalogEntryBadPayload, "decoding move done")
	}
	return nil
}
