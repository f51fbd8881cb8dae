package gc

import (
	"context"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/internal/rlog"
)

// maxConcurrentReaps bounds how many file/directory removals run at once
// against the DFS, the (new) concurrency component F adds over the
// original's sequential foreach loop.
const maxConcurrentReaps = 16

// histogramMaxLatencyNs bounds the HdrHistogram's tracked range at one
// minute; a reap taking longer than that against a live DFS indicates a
// stuck broker, not a slow-but-healthy one.
const histogramMaxLatencyNs = int64(60 * time.Second)

// ReapStats summarizes one reap pass: the original's
// "removed X/Y files; U/V directories" log line, plus the (new) latency
// histograms component F adds.
type ReapStats struct {
	FilesSeen     int
	FilesRemoved  int
	DirsSeen      int
	DirsRemoved   int
	FileLatencyNs *hdrhistogram.Histogram
	DirLatencyNs  *hdrhistogram.Histogram
}

// Reap removes every file in filesMap with a zero reference count, then
// every directory left empty by that removal — the two-pass reclaim of
// §4.F. Within each pass, removals run concurrently (bounded by a semaphore
// permit pool); a single orphan's FS error is logged and never aborts the
// pass. dryrun suppresses every FS mutation but still counts and logs as if
// the removal happened (property 13).
func Reap(ctx context.Context, fs dfs.FS, filesMap *CountMap, dryrun bool, log rlog.Logger) (*ReapStats, error) {
	if log == nil {
		log = rlog.Nop
	}

	stats := &ReapStats{
		FileLatencyNs: hdrhistogram.New(1, histogramMaxLatencyNs, 3),
		DirLatencyNs:  hdrhistogram.New(1, histogramMaxLatencyNs, 3),
	}
	var mu sync.Mutex

	dirsMap := NewCountMap()
	filesMap.Range(func(name string, count int) bool {
		dir := fs.PathDir(name)
		mu.Lock()
		dirsMap.Insert(dir, count)
		mu.Unlock()
		return true
	})

	reapPass(ctx, filesMap, &mu, func(path string) error {
		verb := "removing"
		if dryrun {
			verb = "would remove"
		}
		log.Debugf("MasterGc: %s file %s", verb, path)
		if dryrun {
			return nil
		}
		return fs.Remove(path)
	}, &stats.FilesSeen, &stats.FilesRemoved, stats.FileLatencyNs, log)

	reapPass(ctx, dirsMap, &mu, func(path string) error {
		verb := "removing"
		if dryrun {
			verb = "would remove"
		}
		log.Debugf("MasterGc: %s directory %s", verb, path)
		if dryrun {
			return nil
		}
		return fs.RemoveAll(path)
	}, &stats.DirsSeen, &stats.DirsRemoved, stats.DirLatencyNs, log)

	log.Infof("MasterGc: removed %d/%d files; %d/%d directories",
		stats.FilesRemoved, stats.FilesSeen, stats.DirsRemoved, stats.DirsSeen)

	return stats, nil
}

// reapPass walks every zero-count entry in m concurrently (bounded by
// maxConcurrentReaps permits), invoking remove(path) for each. Per-path
// errors are logged and swallowed: one orphan's FS error must never stop
// another's reclamation (spec.md §7).
func reapPass(ctx context.Context, m *CountMap, mu *sync.Mutex, remove func(path string) error,
	seen, removed *int, hist *hdrhistogram.Histogram, log rlog.Logger) {

	sem := semaphore.NewWeighted(maxConcurrentReaps)
	g, gctx := errgroup.WithContext(ctx)

	m.Range(func(path string, count int) bool {
		if count != 0 {
			return true
		}
		mu.Lock()
		*seen++
		mu.Unlock()

		if err := sem.Acquire(gctx, 1); err != nil {
			// Context cancelled; stop dispatching further work.
			return false
		}
		p := path
		g.Go(func() error {
			defer sem.Release(1)
			start := time.Now()
			err := remove(p)
			elapsed := time.Since(start)

			mu.Lock()
			hist.RecordValue(elapsed.Nanoseconds())
			if err == nil {
				*removed++
			}
			mu.Unlock()

			if err != nil {
				log.Errorf("MasterGc: %v", err)
			}
			// Never propagate: reap continues regardless of per-path errors.
			return nil
		})
		return true
	})

	// g.Wait's error is always nil (workers never return a non-nil error),
	// but still must be awaited so every goroutine finishes before Reap
	// returns stats.
	_ = g.Wait()
}
