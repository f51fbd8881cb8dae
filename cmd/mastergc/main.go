// Command mastergc runs (or single-shots) the master's table-file garbage
// collector against a recorded METADATA snapshot — the range-server RPC
// path §6 of the spec leaves as an external collaborator, so this binary
// reads a METADATA dump instead of a live cluster connection.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/hypertable-io/rangestore/cloud/aws"
	"github.com/hypertable-io/rangestore/cloud/common"
	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/gc"
	"github.com/hypertable-io/rangestore/internal/rlog"
)

// options collects the flags shared by run and once, mirroring the
// teacher's pattern of a single Options struct filled in by pflag.
type options struct {
	fixture    string
	dryrun     bool
	reportDir  string
	s3Bucket   string
	s3BasePath string
	s3Region   string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "mastergc",
		Short: "Scan a METADATA snapshot and reclaim orphaned table files",
	}
	root.PersistentFlags().StringVar(&opts.fixture, "fixture", "", "path to a tab-separated METADATA cell dump (required)")
	root.PersistentFlags().BoolVar(&opts.dryrun, "dryrun", false, "scan and report without deleting anything")
	root.PersistentFlags().StringVar(&opts.reportDir, "report-dir", "", "directory for dry-run audit reports (gzip, requires --dryrun)")
	root.PersistentFlags().StringVar(&opts.s3Bucket, "s3-bucket", "", "mirror table files to this S3 bucket instead of using local disk only")
	root.PersistentFlags().StringVar(&opts.s3BasePath, "s3-base-path", "", "key prefix under --s3-bucket")
	root.PersistentFlags().StringVar(&opts.s3Region, "s3-region", "us-east-1", "AWS region for --s3-bucket")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd(opts), newOnceCmd(opts))
	return root
}

func newRunCmd(opts *options) *cobra.Command {
	var intervalSeconds int
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the GC on a recurring interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := rlog.NewStdLogger(opts.debug)

			props := gc.NewProperties()
			if intervalSeconds > 0 {
				props.SetInt(gc.GcIntervalKey, intervalSeconds)
			}
			interval := time.Duration(props.GetInt(gc.GcIntervalKey, gc.DefaultGcIntervalSeconds)) * time.Second

			table, fs, report, err := buildCollaborators(opts, log)
			if err != nil {
				return err
			}

			metrics := gc.NewMetrics()
			reg := prometheus.NewRegistry()
			if err := metrics.Register(reg); err != nil {
				return err
			}

			var history []float64
			worker := &gc.Worker{
				Metadata: table,
				FS:       fs,
				Interval: interval,
				Dryrun:   opts.dryrun,
				Log:      log,
				Metrics:  metrics,
				Report:   report,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				srv := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Errorf("mastergc: metrics server exited: %v", err)
					}
				}()
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			go trackHistory(ctx, metrics, &history)

			worker.Run(ctx)

			if len(history) > 1 {
				fmt.Fprintln(os.Stderr, asciigraph.Plot(history,
					asciigraph.Height(10), asciigraph.Caption("files removed per cycle")))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&intervalSeconds, "interval", 0, "seconds between cycles (default: Hypertable.Master.Gc.Interval, 300)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on, e.g. :9190")
	return cmd
}

func newOnceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single GC cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := rlog.NewStdLogger(opts.debug)

			table, fs, report, err := buildCollaborators(opts, log)
			if err != nil {
				return err
			}

			worker := &gc.Worker{
				Metadata: table,
				FS:       fs,
				Dryrun:   opts.dryrun,
				Log:      log,
				Report:   report,
			}
			return worker.Once(context.Background())
		},
	}
	return cmd
}

// buildCollaborators assembles the METADATA fixture table, the dfs.FS (local
// or S3-mirrored, depending on opts.s3Bucket), and the optional dry-run
// report writer every run/once invocation needs.
func buildCollaborators(opts *options, log rlog.Logger) (gc.Table, dfs.FS, *gc.ReportWriter, error) {
	if opts.fixture == "" {
		return nil, nil, nil, fmt.Errorf("mastergc: --fixture is required (no live METADATA RPC client in this build)")
	}
	f, err := os.Open(opts.fixture)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	table, err := gc.LoadFixtureTable(f)
	if err != nil {
		return nil, nil, nil, err
	}

	var fs dfs.FS = dfs.Default
	if opts.s3Bucket != "" {
		cloudFS, err := aws.NewCloudFS(dfs.Default, common.CloudFsOption{
			Bucket:   opts.s3Bucket,
			BasePath: opts.s3BasePath,
			Region:   opts.s3Region,
		}, log)
		if err != nil {
			return nil, nil, nil, err
		}
		fs = cloudFS
	}

	var report *gc.ReportWriter
	if opts.dryrun && opts.reportDir != "" {
		report = &gc.ReportWriter{FS: fs, Dir: opts.reportDir}
	}

	return table, fs, report, nil
}

// trackHistory polls the files-removed counter every second and appends its
// delta to history, so run can chart the per-cycle reclaim trend on exit.
func trackHistory(ctx context.Context, metrics *gc.Metrics, history *[]float64) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var last float64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := counterValue(metrics.FilesRemovedTotal)
			if cur != last {
				*history = append(*history, cur-last)
				last = cur
			}
		}
	}
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
