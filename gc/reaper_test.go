package gc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypertable-io/rangestore/dfs"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestReapRemovesOrphanedFilesThenEmptyDirectories(t *testing.T) {
	dir := t.TempDir()
	orphan := filepath.Join(dir, "t", "1", "z", "f3")
	writeFile(t, orphan)

	filesMap := NewCountMap()
	filesMap.Insert(orphan, 0) // zero references: orphaned

	stats, err := Reap(context.Background(), dfs.Default, filesMap, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, 1, stats.FilesSeen)
	assert.Equal(t, 1, stats.DirsRemoved, "parent directory becomes empty and is reaped in pass 2")

	_, statErr := os.Stat(orphan)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Dir(orphan))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReapLeavesLiveFilesAndNonEmptyDirectories(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "t", "1", "m", "f1")
	writeFile(t, live)

	filesMap := NewCountMap()
	filesMap.Insert(live, 1) // referenced once: live

	stats, err := Reap(context.Background(), dfs.Default, filesMap, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesRemoved)
	assert.Equal(t, 0, stats.DirsRemoved)

	_, statErr := os.Stat(live)
	assert.NoError(t, statErr)
}

func TestReapDryrunDoesNotMutateFilesystem(t *testing.T) {
	dir := t.TempDir()
	orphan := filepath.Join(dir, "t", "1", "z", "f3")
	writeFile(t, orphan)

	filesMap := NewCountMap()
	filesMap.Insert(orphan, 0)

	stats, err := Reap(context.Background(), dfs.Default, filesMap, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved, "dryrun still counts what would be removed")

	_, statErr := os.Stat(orphan)
	assert.NoError(t, statErr, "dryrun must not touch the filesystem")
}
