package gc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hypertable-io/rangestore/dfs"
)

func TestWorkerOnceRunsASingleCycle(t *testing.T) {
	dir := t.TempDir()
	orphan := filepath.Join(dir, "1", "m", "f1")
	require.NoError(t, os.MkdirAll(filepath.Dir(orphan), 0o755))
	require.NoError(t, os.WriteFile(orphan, []byte("x"), 0o644))

	table := &memTable{cells: []memCell{
		{row: "1:z", cf: "Files", cq: "default", ts: 1, value: []byte("!")},
	}}

	w := &Worker{
		Metadata: table,
		FS:       dfs.Default,
		Dryrun:   true,
		Metrics:  NewMetrics(),
	}

	require.NoError(t, w.Once(context.Background()))
}
