package gc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/internal/rlog"
)

// Worker drives the periodic GC loop: the Go analogue of GcWorker's
// operator() in MasterGc.cc. One Worker runs as a single dedicated
// goroutine (spec.md §5: "the GC runs as a single dedicated worker task").
type Worker struct {
	Metadata Table // nil until the master has finished recovering METADATA
	FS       dfs.FS
	Interval time.Duration
	Dryrun   bool
	Log      rlog.Logger
	Metrics  *Metrics
	Report   *ReportWriter // optional; non-nil enables dry-run audit reports
}

// Run loops until ctx is cancelled, sleeping Interval between cycles. If
// Metadata is nil on a given tick, the cycle is skipped with a log line
// ("METADATA not ready, will try again") rather than an error — mirrors the
// original's `if (m_metadata) gc(); else HT_INFOF(...)`.
func (w *Worker) Run(ctx context.Context) {
	if w.Log == nil {
		w.Log = rlog.Nop
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.Log.Infof("Started table file garbage collection thread with interval: %d seconds",
		int(w.Interval/time.Second))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.Metadata == nil {
				w.Log.Infof("MasterGc: METADATA not ready, will try again in %d seconds",
					int(w.Interval/time.Second))
				continue
			}
			w.runCycle(ctx)
		}
	}
}

// Once runs a single GC cycle and returns, the Go analogue of
// master_gc_once. Metadata must be non-nil.
func (w *Worker) Once(ctx context.Context) error {
	if w.Log == nil {
		w.Log = rlog.Nop
	}
	return w.gc(ctx)
}

func (w *Worker) runCycle(ctx context.Context) {
	if err := w.gc(ctx); err != nil {
		w.Log.Errorf("Error: caught error while gc'ing: %v", err)
		if w.Metrics != nil {
			w.Metrics.Observe(nil, 0, err)
		}
	}
}

// gc runs one scan+reap cycle and returns the first error; runCycle is the
// part that mirrors GcWorker::gc's try/catch, logging and swallowing it.
// Each cycle is tagged with a fresh UUID that appears in its start and
// finish log lines and in its dry-run audit report's file name.
func (w *Worker) gc(ctx context.Context) error {
	cycleID := uuid.New()
	start := time.Now()

	w.Log.Infof("MasterGc: starting cycle %s", cycleID)

	filesMap, err := ScanMetadata(w.Metadata, w.Dryrun, w.Log)
	if err != nil {
		return err
	}

	stats, err := Reap(ctx, w.FS, filesMap, w.Dryrun, w.Log)
	if err != nil {
		return err
	}

	if w.Dryrun && w.Report != nil {
		if err := w.Report.Write(cycleID, filesMap, stats); err != nil {
			w.Log.Errorf("MasterGc: failed to write dry-run audit report: %v", err)
		}
	}

	if w.Metrics != nil {
		w.Metrics.Observe(stats, time.Since(start).Seconds(), nil)
	}
	w.Log.Infof("MasterGc: finished cycle %s in %s", cycleID, time.Since(start))
	return nil
}
