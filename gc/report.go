package gc

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/hypertable-io/rangestore/dfs"
)

// ReportWriter writes a gzip-compressed, newline-delimited audit report
// listing every file a dry-run cycle would have removed, followed by a
// summary line with the file and directory counts — component G's (new)
// addition for offline review of what a live run would reap. Directory
// paths are not listed.
type ReportWriter struct {
	FS  dfs.FS
	Dir string
}

// Write emits one report file named by the cycle's correlation UUID,
// listing every orphaned file in filesMap and the counts from stats.
func (w *ReportWriter) Write(cycleID uuid.UUID, filesMap *CountMap, stats *ReapStats) error {
	if err := w.FS.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	name := w.FS.PathJoin(w.Dir, fmt.Sprintf("gc-dryrun-%s.log.gz", cycleID))
	f, err := w.FS.Create(name)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(asGzWriter{f})
	filesMap.Range(func(path string, count int) bool {
		if count == 0 {
			fmt.Fprintf(gz, "file\t%s\n", path)
		}
		return true
	})
	fmt.Fprintf(gz, "# summary: %d/%d files, %d/%d directories would be removed\n",
		stats.FilesRemoved, stats.FilesSeen, stats.DirsRemoved, stats.DirsSeen)

	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type asGzWriter struct{ f dfs.File }

func (a asGzWriter) Write(p []byte) (int, error) { return a.f.Write(p) }
