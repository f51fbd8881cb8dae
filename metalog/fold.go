package metalog

import (
	"sort"

	"github.com/cockroachdb/redact"

	"github.com/hypertable-io/rangestore/internal/errkind"
	"github.com/hypertable-io/rangestore/internal/rlog"
)

// RangeStateInfo is the derived, in-memory per-range state a replay folds
// a metalog's entries into. Identified by (Table.ID, Range.EndRow) — the
// uniqueness key for the folded set (spec.md §3).
type RangeStateInfo struct {
	Table        TableIdentifier
	Range        RangeSpec
	SoftLimit    uint64
	Timestamp    uint64
	Transactions []Entry
}

// folder applies a partially-ordered stream of entries to an in-memory set
// of RangeStateInfo, enforcing the ordering invariants of spec.md §3/§4.D.
// It does not reorder entries — deterministic in input order. The only
// change to a RangeStateInfo's key after insertion is the rekey to
// split_off's end_row in applySplitStart.
type folder struct {
	reader *Reader // for Path()/Pos()/Size() in error messages; may be nil in tests
	path   string
	log    rlog.Logger

	set   map[rangeKey]*RangeStateInfo
	order []rangeKey // insertion order, rekeyed on SplitStart; result() sorts the set's keys and does not read it
}

func newFolder(r *Reader) *folder {
	f := &folder{reader: r, set: make(map[rangeKey]*RangeStateInfo), log: rlog.Nop}
	if r != nil {
		f.path = r.path
	}
	return f
}

// NewFolder constructs a standalone folder for callers replaying a slice of
// RawEntry without a Reader (e.g. tests, or a caller that already has
// entries in memory). log defaults to rlog.Nop if nil.
func NewFolder(path string, log rlog.Logger) *folder {
	if log == nil {
		log = rlog.Nop
	}
	return &folder{path: path, set: make(map[rangeKey]*RangeStateInfo), log: log}
}

// Apply folds one entry into the set. Exported for NewFolder callers;
// Reader.LoadRangeStates uses the unexported apply name internally via the
// same method (Go has no method overloading, so apply/Apply share a body).
func (f *folder) Apply(e Entry, timestamp uint64) error { return f.apply(e, timestamp) }

func (f *folder) pos() (int64, int64) {
	if f.reader != nil {
		return f.reader.Pos(), f.reader.Size()
	}
	return 0, 0
}

func (f *folder) badOrder(format string, args ...interface{}) error {
	pos, size := f.pos()
	args = append(append([]interface{}{}, args...), pos, size, redact.Safe(f.path))
	return errkind.Newf(errkind.ErrMetalogEntryBadOrder, format+" at %d/%d in %s", args...)
}

func (f *folder) apply(e Entry, timestamp uint64) error {
	switch ep := e.(type) {
	case *RangeLoaded:
		return f.applyRangeLoaded(ep, timestamp)
	case *SplitStart:
		return f.applySplitStart(ep)
	case *SplitShrunk:
		return f.applySplitShrunk(ep)
	case *SplitDone:
		return f.applySplitDone(ep)
	case *MoveStart:
		return f.applyMoveStart(ep)
	case *MovePrepared:
		return f.applyMovePrepared(ep)
	case *MoveDone:
		return f.applyMoveDone(ep)
	default:
		return errkind.Newf(errkind.ErrUnimplemented, "metalog: unhandled entry type %T", e)
	}
}

// applyRangeLoaded implements invariant 3/4 and §8 property 4: a second
// RangeLoaded for an already-present key is corruption, logged as a
// warning and discarded, leaving the set unchanged.
func (f *folder) applyRangeLoaded(e *RangeLoaded, timestamp uint64) error {
	key := keyOf(e.Table(), e.Range())
	if _, exists := f.set[key]; exists {
		pos, size := f.pos()
		f.log.Warningf("Duplicate RangeLoaded entry in: %s at %d/%d table=%v range=%v",
			f.path, pos, size, e.Table(), e.Range())
		return nil
	}
	f.set[key] = &RangeStateInfo{
		Table:     e.Table(),
		Range:     e.Range(),
		SoftLimit: e.State().SoftLimit,
		Timestamp: timestamp,
	}
	f.order = append(f.order, key)
	return nil
}

func (f *folder) lookup(table TableIdentifier, r RangeSpec) (*RangeStateInfo, bool) {
	rsi, ok := f.set[keyOf(table, r)]
	return rsi, ok
}

// applySplitStart implements invariant 1: absence of the key is
// MetalogEntryBadOrder; on success, appends to Transactions and updates
// SoftLimit from the entry's state (invariant 4).
//
// A split's SplitShrunk/SplitDone entries are logged keyed by the post-split
// (shrunken) end_row, not the pre-split one (spec.md §6 example S1: SplitStart
// carries range r="m", split_off="g", and the trailing SplitShrunk/SplitDone
// both carry r="g"). So the set entry is rekeyed here, at SplitStart time, to
// SplitOff's end_row — Range itself is left untouched until SplitShrunk
// assigns the shrunken bounds, but the lookup key moves immediately so later
// entries in the same split resolve against it.
func (f *folder) applySplitStart(e *SplitStart) error {
	oldKey := keyOf(e.Table(), e.Range())
	rsi, ok := f.set[oldKey]
	if !ok {
		return f.badOrder("unexpected split start entry")
	}
	rsi.Transactions = append(rsi.Transactions, e)
	rsi.SoftLimit = e.State().SoftLimit

	if newKey := keyOf(e.Table(), e.SplitOff); newKey != oldKey {
		delete(f.set, oldKey)
		f.set[newKey] = rsi
		for i, k := range f.order {
			if k == oldKey {
				f.order[i] = newKey
				break
			}
		}
	}
	return nil
}

// applySplitShrunk implements invariants 1/2/3: the transaction list must
// lead with SplitStart; on success, appends the entry and replaces Range
// with the shrunken bounds (§8 property 3).
func (f *folder) applySplitShrunk(e *SplitShrunk) error {
	rsi, ok := f.lookup(e.Table(), e.Range())
	if !ok || len(rsi.Transactions) == 0 || rsi.Transactions[0].Type() != TypeSplitStart {
		return f.badOrder("unexpected split shrunk entry")
	}
	rsi.Transactions = append(rsi.Transactions, e)
	rsi.Range = e.Range()
	return nil
}

// applySplitDone implements invariant 1/2: requires the same precondition
// as SplitShrunk; on success, clears Transactions (§8 property 2).
func (f *folder) applySplitDone(e *SplitDone) error {
	rsi, ok := f.lookup(e.Table(), e.Range())
	if !ok || len(rsi.Transactions) == 0 || rsi.Transactions[0].Type() != TypeSplitStart {
		return f.badOrder("unexpected split done entry")
	}
	rsi.Transactions = nil
	return nil
}

// applyMoveStart folds the move trio by analogy with split (§3/§9 open
// question resolution): absence of the key is bad order; on success,
// appends to Transactions and updates SoftLimit.
func (f *folder) applyMoveStart(e *MoveStart) error {
	rsi, ok := f.lookup(e.Table(), e.Range())
	if !ok {
		return f.badOrder("unexpected move start entry")
	}
	rsi.Transactions = append(rsi.Transactions, e)
	rsi.SoftLimit = e.State().SoftLimit
	return nil
}

func (f *folder) applyMovePrepared(e *MovePrepared) error {
	rsi, ok := f.lookup(e.Table(), e.Range())
	if !ok || len(rsi.Transactions) == 0 || rsi.Transactions[0].Type() != TypeMoveStart {
		return f.badOrder("unexpected move prepared entry")
	}
	rsi.Transactions = append(rsi.Transactions, e)
	return nil
}

func (f *folder) applyMoveDone(e *MoveDone) error {
	rsi, ok := f.lookup(e.Table(), e.Range())
	if !ok || len(rsi.Transactions) == 0 || rsi.Transactions[0].Type() != TypeMoveStart {
		return f.badOrder("unexpected move done entry")
	}
	rsi.Transactions = nil
	return nil
}

// result returns the folded set in (table.id, end_row) lexicographic order
// — set-iteration order, not temporal order (spec.md §4.D).
func (f *folder) result() []*RangeStateInfo {
	keys := make([]rangeKey, 0, len(f.set))
	for k := range f.set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]*RangeStateInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.set[k])
	}
	return out
}

// Result exposes result for NewFolder callers driving their own apply loop.
func (f *folder) Result() []*RangeStateInfo { return f.result() }
