package metalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypertable-io/rangestore/dfs"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "range.rsml")
	table := tableA()
	writeAll(t, path, []Entry{
		NewRangeLoaded(table, rangeSpec("", EndRowMarker), RangeState{SoftLimit: 42}),
	})

	require.NoError(t, Archive(dfs.Default, path))

	_, err := dfs.Default.Stat(path)
	assert.Error(t, err, "original should be removed after archiving")

	archived, err := dfs.Default.Stat(path + archiveSuffix)
	require.NoError(t, err)
	assert.Greater(t, archived.Size(), int64(0))

	require.NoError(t, Unarchive(dfs.Default, path))

	r, err := NewReader(dfs.Default, path)
	require.NoError(t, err)
	defer r.Close()

	states, err := r.LoadRangeStates(false)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(42), states[0].SoftLimit)
}
