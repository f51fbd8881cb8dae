package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMetadataCountsNewestVersionFiles(t *testing.T) {
	table := &memTable{cells: []memCell{
		{row: "1:m", cf: "Files", cq: "default", ts: 10, value: []byte("f1;\nf2;\n")},
	}}

	filesMap, err := ScanMetadata(table, false, nil)
	require.NoError(t, err)

	c, ok := filesMap.Get("f1")
	require.True(t, ok)
	assert.Equal(t, 1, c)
	c, ok = filesMap.Get("f2")
	require.True(t, ok)
	assert.Equal(t, 1, c)
}

func TestScanMetadataSupersededVersionIsZeroedAndCellDeleted(t *testing.T) {
	table := &memTable{cells: []memCell{
		{row: "1:m", cf: "Files", cq: "default", ts: 20, value: []byte("f1;\nf2;\n")},
		{row: "1:m", cf: "Files", cq: "default", ts: 10, value: []byte("f1;\nf3;\n")},
	}}

	filesMap, err := ScanMetadata(table, false, nil)
	require.NoError(t, err)

	c, _ := filesMap.Get("f1")
	assert.Equal(t, 1, c, "f1 appears live in the newest version, superseded version adds 0")
	c, _ = filesMap.Get("f2")
	assert.Equal(t, 1, c)
	c, ok := filesMap.Get("f3")
	require.True(t, ok, "f3 only appears in the superseded cell, registered with count 0")
	assert.Equal(t, 0, c)
}

func TestScanMetadataSupersededTimestampOrderViolationIsLoggedAndSkipped(t *testing.T) {
	table := &memTable{cells: []memCell{
		{row: "1:m", cf: "Files", cq: "default", ts: 10, value: []byte("f1;\n")},
		// Out-of-order: a later cell with a higher timestamp than the one
		// already treated as newest for this access group.
		{row: "1:m", cf: "Files", cq: "default", ts: 20, value: []byte("f4;\n")},
	}}

	filesMap, err := ScanMetadata(table, false, nil)
	require.NoError(t, err)

	_, ok := filesMap.Get("f4")
	assert.False(t, ok, "the out-of-order cell is logged and skipped, not folded in")
}

func TestScanMetadataTombstoneOnlyRowIsDeleted(t *testing.T) {
	table := &memTable{cells: []memCell{
		{row: "1:z", cf: "Files", cq: "default", ts: 10, value: []byte("!")},
	}}

	_, err := ScanMetadata(table, false, nil)
	require.NoError(t, err)
	require.NotNil(t, table.mutator)
	assert.Equal(t, []KeySpec{{Row: "1:z"}}, table.mutator.deletes)
}

func TestScanMetadataUnexpectedColumnFamilyIsSkipped(t *testing.T) {
	table := &memTable{cells: []memCell{
		{row: "1:m", cf: "Other", cq: "default", ts: 10, value: []byte("junk")},
		{row: "1:m", cf: "Files", cq: "default", ts: 9, value: []byte("f1;\n")},
	}}

	filesMap, err := ScanMetadata(table, false, nil)
	require.NoError(t, err)
	c, ok := filesMap.Get("f1")
	require.True(t, ok)
	assert.Equal(t, 1, c)
}

func TestScanMetadataDryrunStillCountsButDoesNotDelete(t *testing.T) {
	table := &memTable{cells: []memCell{
		{row: "1:m", cf: "Files", cq: "default", ts: 20, value: []byte("f1;\n")},
		{row: "1:m", cf: "Files", cq: "default", ts: 10, value: []byte("f3;\n")},
		{row: "1:z", cf: "Files", cq: "default", ts: 10, value: []byte("!")},
	}}

	filesMap, err := ScanMetadata(table, true, nil)
	require.NoError(t, err)

	c, ok := filesMap.Get("f1")
	require.True(t, ok)
	assert.Equal(t, 1, c)
	c, ok = filesMap.Get("f3")
	require.True(t, ok)
	assert.Equal(t, 0, c)

	require.NotNil(t, table.mutator)
	assert.Empty(t, table.mutator.deletes, "dryrun stages neither the superseded-cell delete nor the row delete")
}

func TestInsertFilesStripsHashPrefixAndDropsTrailingFragment(t *testing.T) {
	m := NewCountMap()
	insertFiles(m, []byte("#f1;\nf2;\ntrailing-without-separator"), 1)

	c, ok := m.Get("f1")
	require.True(t, ok)
	assert.Equal(t, 1, c)
	c, ok = m.Get("f2")
	require.True(t, ok)
	assert.Equal(t, 1, c)
	_, ok = m.Get("trailing-without-separator")
	assert.False(t, ok)
}
