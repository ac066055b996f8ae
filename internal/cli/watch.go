package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/clauserisk/internal/metrics"
	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
	"github.com/ppiankov/clauserisk/internal/watch"
)

var (
	watchOutputDir string
	watchDebounce  time.Duration
	watchExisting  bool
	watchWorkers   int
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyze contracts as they are added or changed in a directory",
	Long: `Watch monitors a directory tree and analyzes every new or changed contract
(.txt, .md, .docx, .pdf, .html). Reports are written to --output-dir.
Unchanged content is never re-analyzed.

With --metrics-addr the analysis counters are served for Prometheus at /metrics.

Example:
  clauserisk watch ./inbox
  clauserisk watch ./inbox --output-dir ./reports --metrics-addr :9090 --scan-existing`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "./clauserisk-reports", "output directory for reports")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait for changes to settle before analyzing")
	watchCmd.Flags().BoolVar(&watchExisting, "scan-existing", false, "analyze contracts already in the directory at startup")
	watchCmd.Flags().IntVar(&watchWorkers, "concurrency", 2, "documents analyzed concurrently")
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	addAnalysisFlags(watchCmd)
	addHTTPFlags(watchCmd)
	addLLMFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	if err := bindFlags(cmd, map[string]string{"metrics-addr": "metrics.addr"}); err != nil {
		return err
	}
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	if err := os.MkdirAll(watchOutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := slog.Default()
	m := metrics.New()

	p := pipeline.NewPipeline(cfg, pipeline.WithLogger(logger), pipeline.WithMetrics(m))
	defer func() { _ = p.Close() }()

	wcfg := watch.DefaultConfig()
	wcfg.Debounce = watchDebounce
	wcfg.ScanExisting = watchExisting
	wcfg.IgnorePaths = []string{watchOutputDir}

	w, err := watch.New(wcfg, dir, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	g, ctx := errgroup.WithContext(parent)

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var seq atomic.Int64
	g.Go(func() error {
		return watch.Process(ctx, w.Events(), p, watchWorkers, func(ev watch.Event, report *model.Report, err error) {
			if err != nil {
				logger.Warn("analysis failed", "path", ev.Path, "error", err)
				return
			}
			rel, relErr := filepath.Rel(dir, ev.Path)
			if relErr != nil {
				rel = ev.Path
			}
			base := filepath.Join(watchOutputDir, fmt.Sprintf("%s-%d", sanitizeFilename(rel), seq.Add(1)))
			if err := p.RenderReport(report, base+".json", base+".md", base+".summary.txt", nil); err != nil {
				logger.Warn("render failed", "path", ev.Path, "error", err)
				return
			}
			logger.Info("analyzed contract",
				"path", rel,
				"op", ev.Operation,
				"contract_type", report.ContractType,
				"risk", report.Score.Overall,
				"clauses", len(report.Clauses),
				"report", base+".json")
		})
	})

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", dir)

	err = g.Wait()
	if n := w.Dropped(); n > 0 {
		logger.Warn("watch events dropped, analysis fell behind", "dropped", n)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
