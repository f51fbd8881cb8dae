package gc

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the Prometheus series the (new) §4.G scheduler updates at
// the end of every cycle, scheduled or one-shot. Built with NewMetrics and
// registered once against a *prometheus.Registry by the caller (cmd/mastergc
// binds a dedicated registry to its --metrics-addr listener).
type Metrics struct {
	FilesRemovedTotal prometheus.Counter
	DirsRemovedTotal  prometheus.Counter
	ScanErrorsTotal   prometheus.Counter
	ScanDuration      prometheus.Histogram
}

// NewMetrics constructs the GC's metric set with the "hypertable_master_gc"
// namespace.
func NewMetrics() *Metrics {
	return &Metrics{
		FilesRemovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hypertable_master_gc",
			Name:      "files_removed_total",
			Help:      "Total number of orphaned table files removed from the DFS.",
		}),
		DirsRemovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hypertable_master_gc",
			Name:      "dirs_removed_total",
			Help:      "Total number of empty range directories removed from the DFS.",
		}),
		ScanErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hypertable_master_gc",
			Name:      "scan_errors_total",
			Help:      "Total number of GC cycles that failed during the METADATA scan or reap.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hypertable_master_gc",
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock duration of a full GC cycle (scan + reap).",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register adds every collector in m to reg.
func (m *Metrics) Register(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{m.FilesRemovedTotal, m.DirsRemovedTotal, m.ScanErrorsTotal, m.ScanDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe records the outcome of one completed cycle.
func (m *Metrics) Observe(stats *ReapStats, durationSeconds float64, scanErr error) {
	if scanErr != nil {
		m.ScanErrorsTotal.Inc()
		return
	}
	m.FilesRemovedTotal.Add(float64(stats.FilesRemoved))
	m.DirsRemovedTotal.Add(float64(stats.DirsRemoved))
	m.ScanDuration.Observe(durationSeconds)
}
