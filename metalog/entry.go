package metalog

import "github.com/hypertable-io/rangestore/internal/errkind"

// EntryType is the wire tag identifying which MetaLogEntry variant follows.
// The tag space is closed and centrally defined here so the reader can
// dispatch (spec.md §4.B), the Go equivalent of the original's
// MetaLogEntryFactory::RS_* enum.
type EntryType uint16

const (
	TypeRangeLoaded EntryType = iota + 1
	TypeSplitStart
	TypeSplitShrunk
	TypeSplitDone
	TypeMoveStart
	TypeMovePrepared
	TypeMoveDone
)

func (t EntryType) String() string {
	switch t {
	case TypeRangeLoaded:
		return "RangeLoaded"
	case TypeSplitStart:
		return "SplitStart"
	case TypeSplitShrunk:
		return "SplitShrunk"
	case TypeSplitDone:
		return "SplitDone"
	case TypeMoveStart:
		return "MoveStart"
	case TypeMovePrepared:
		return "MovePrepared"
	case TypeMoveDone:
		return "MoveDone"
	default:
		return "Unknown"
	}
}

// Entry is the closed tagged-variant interface every metalog record
// implements: self-describing write, self-describing read, and a stable
// type tag. This replaces the source's virtual inheritance over a
// MetaLogEntry base (spec.md §9).
type Entry interface {
	Type() EntryType
	Write(buf *DynamicBuffer)
	Read(c *Cursor) error

	// Table and Range identify which range this entry concerns; every
	// variant carries at least these two fields (MetaLogEntryRangeBase in
	// the original).
	Table() TableIdentifier
	Range() RangeSpec
}

// rangeBase is the embeddable common payload every entry carries: a table
// identifier and a range spec. Corresponds to MetaLogEntryRangeBase.
type rangeBase struct {
	table TableIdentifier
	rng   RangeSpec
}

func (b rangeBase) Table() TableIdentifier { return b.table }
func (b rangeBase) Range() RangeSpec       { return b.rng }

func (b *rangeBase) write(buf *DynamicBuffer) {
	b.table.Write(buf)
	b.rng.Write(buf)
}

func (b *rangeBase) read(c *Cursor) error {
	if err := b.table.Read(c); err != nil {
		return err
	}
	return b.rng.Read(c)
}

// rangeCommon additionally carries a RangeState, for the entries that
// report a size threshold (MetaLogEntryRangeCommon in the original:
// RangeLoaded, SplitStart, MoveStart).
type rangeCommon struct {
	rangeBase
	state RangeState
}

func (c *rangeCommon) write(buf *DynamicBuffer) {
	c.rangeBase.write(buf)
	c.state.Write(buf)
}

func (c *rangeCommon) read(cur *Cursor) error {
	if err := c.rangeBase.read(cur); err != nil {
		return err
	}
	return c.state.Read(cur)
}

// registry maps a wire tag to a zero-value constructor, the Go analogue of
// RangeServerMetaLogEntryFactory's switch-based dispatch.
var registry = map[EntryType]func() Entry{
	TypeRangeLoaded:  func() Entry { return &RangeLoaded{} },
	TypeSplitStart:   func() Entry { return &SplitStart{} },
	TypeSplitShrunk:  func() Entry { return &SplitShrunk{} },
	TypeSplitDone:    func() Entry { return &SplitDone{} },
	TypeMoveStart:    func() Entry { return &MoveStart{} },
	TypeMovePrepared: func() Entry { return &MovePrepared{} },
	TypeMoveDone:     func() Entry { return &MoveDone{} },
}

// newFromPayload constructs the entry for typ and decodes payload into it.
// Decode failures are wrapped as ErrMetalogEntryBadPayload, the phase name
// mirroring the original's HT_TRY("decoding split start", ...) wrapping
// convention at each variant's Read.
func newFromPayload(typ EntryType, payload []byte) (Entry, error) {
	ctor, ok := registry[typ]
	if !ok {
		return nil, errkind.Newf(errkind.ErrMetalogEntryBadPayload, "unknown entry type %d", typ)
	}
	e := ctor()
	c := NewCursor(payload)
	if err := e.Read(c); err != nil {
		return nil, errkind.Wrapf(err, errkind.ErrMetalogEntryBadPayload, "decoding %s", typ)
	}
	return e, nil
}
