package metalog

import (
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/internal/errkind"
)

func writeAll(t *testing.T, path string, entries []Entry) {
	t.Helper()
	w, err := CreateWriter(dfs.Default, path)
	require.NoError(t, err)
	for i, e := range entries {
		require.NoError(t, w.Append(e, uint64(i+1)))
	}
	require.NoError(t, w.Close())
}

func loadStates(t *testing.T, path string) []*RangeStateInfo {
	t.Helper()
	r, err := NewReader(dfs.Default, path)
	require.NoError(t, err)
	defer r.Close()
	states, err := r.LoadRangeStates(false)
	require.NoError(t, err)
	return states
}

func TestFoldOrdersByTableThenEndRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.rsml")
	table := tableA()
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, rangeSpec("m", EndRowMarker), RangeState{SoftLimit: 1}),
		NewRangeLoaded(table, rangeSpec("", "a"), RangeState{SoftLimit: 1}),
		NewRangeLoaded(table, rangeSpec("a", "m"), RangeState{SoftLimit: 1}),
	})

	states := loadStates(t, path)
	require.Len(t, states, 3)
	assert.Equal(t, "a", states[0].Range.EndRow)
	assert.Equal(t, "m", states[1].Range.EndRow)
	assert.Equal(t, EndRowMarker, states[2].Range.EndRow)
}

func TestFoldDuplicateRangeLoadedIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.rsml")
	table := tableA()
	r := rangeSpec("", EndRowMarker)
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, r, RangeState{SoftLimit: 1}),
		NewRangeLoaded(table, r, RangeState{SoftLimit: 2}),
	})

	states := loadStates(t, path)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(1), states[0].SoftLimit)
}

func TestFoldSplitTrioShrinksRangeAndClearsTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "split.rsml")
	table := tableA()
	// split_off carries the parent's post-split identity: fold keys the
	// shrinking range by split_off's end_row as soon as SplitStart is
	// applied, so the trailing SplitShrunk/SplitDone (spec.md §6 example
	// S1) can be looked up by that same, already-shrunk end_row.
	full := rangeSpec("", EndRowMarker)
	shrunk := rangeSpec("", "m")
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, full, RangeState{SoftLimit: 1}),
		NewSplitStart(table, full, shrunk, RangeState{SoftLimit: 2}),
		NewSplitShrunk(table, shrunk),
		NewSplitDone(table, shrunk),
	})

	states := loadStates(t, path)
	require.Len(t, states, 1)
	assert.Equal(t, shrunk, states[0].Range)
	assert.Equal(t, uint64(2), states[0].SoftLimit)
	assert.Empty(t, states[0].Transactions)
}

func TestFoldSplitStartWithoutRangeLoadedIsBadOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badorder.rsml")
	table := tableA()
	writeAll(t, path, []Entry{
		NewSplitStart(table, rangeSpec("", EndRowMarker), rangeSpec("m", EndRowMarker), RangeState{}),
	})

	r, err := NewReader(dfs.Default, path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LoadRangeStates(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrMetalogEntryBadOrder)
}

func TestFoldSplitDoneWithoutSplitStartIsBadOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badorder2.rsml")
	table := tableA()
	full := rangeSpec("", EndRowMarker)
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, full, RangeState{}),
		NewSplitDone(table, full),
	})

	r, err := NewReader(dfs.Default, path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LoadRangeStates(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrMetalogEntryBadOrder)
}

func TestFoldMoveTrioMirrorsSplitWithoutResizing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "move.rsml")
	table := tableA()
	r := rangeSpec("a", "m")
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, r, RangeState{SoftLimit: 1}),
		NewMoveStart(table, r, RangeState{SoftLimit: 5, TransferLog: "/logs/xfer-1"}),
		NewMovePrepared(table, r),
		NewMoveDone(table, r),
	})

	states := loadStates(t, path)
	require.Len(t, states, 1)
	assert.Equal(t, r, states[0].Range)
	assert.Equal(t, uint64(5), states[0].SoftLimit)
	assert.Empty(t, states[0].Transactions)
}

func TestFoldMoveDoneWithoutMoveStartIsBadOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movebadorder.rsml")
	table := tableA()
	r := rangeSpec("a", "m")
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, r, RangeState{}),
		NewMoveDone(table, r),
	})

	rd, err := NewReader(dfs.Default, path)
	require.NoError(t, err)
	defer rd.Close()

	_, err = rd.LoadRangeStates(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrMetalogEntryBadOrder)
}

func TestLoadRangeStatesCachesUntilForced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.rsml")
	table := tableA()
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, rangeSpec("", EndRowMarker), RangeState{SoftLimit: 1}),
	})

	r, err := NewReader(dfs.Default, path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.LoadRangeStates(false)
	require.NoError(t, err)
	second, err := r.LoadRangeStates(false)
	require.NoError(t, err)
	if diff := pretty.Diff(first, second); len(diff) > 0 {
		t.Fatalf("cached LoadRangeStates diverged from the first call:\n%s", diff)
	}
}
