package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"cognerd/internal/config"
	"cognerd/internal/engine"
	"cognerd/internal/input"
	"cognerd/internal/logging"
	"cognerd/internal/memory"
	"cognerd/internal/metrics"
	"cognerd/internal/rules"
	"cognerd/internal/store"
)

// =============================================================================
// RUN COMMAND
// =============================================================================

var (
	runCycles      int
	runWatchDir    string
	runDBPath      string
	runNoStore     bool
	runMetricsAddr string
	runSilence     int
	runQuiet       bool
)

// runCmd feeds task documents to a fresh memory and runs the control loop
var runCmd = &cobra.Command{
	Use:   "run [task-files...]",
	Short: "Run the reasoner over task documents",
	Long: `Loads the given YAML task documents, then runs work cycles until the cycle
limit is reached or the process is interrupted.

With --watch, task documents written to the directory are admitted while the
reasoner runs. With --metrics-addr, Prometheus metrics are served on /metrics.
Each run is recorded in the run history unless --no-store is given.

Example:
  cognerd run tasks/robin.yaml --cycles 500`,
	RunE: runReasoner,
}

func init() {
	runCmd.Flags().IntVarP(&runCycles, "cycles", "n", 0, "Work cycles to run (0: until interrupted)")
	runCmd.Flags().StringVar(&runWatchDir, "watch", "", "Directory to watch for task documents")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "Run history database (default from config)")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "Do not record the run")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	runCmd.Flags().IntVar(&runSilence, "silence", 0, "Only report derivations whose budget summary exceeds silence/100")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Print answers only")
}

// applyRunFlags overlays explicitly set flags on the loaded config.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("cycles") {
		c.Engine.Cycles = runCycles
	}
	if flags.Changed("watch") {
		c.Input.Watch = runWatchDir != ""
	}
	if flags.Changed("db") {
		c.Store.DatabasePath = runDBPath
	}
	if runNoStore {
		c.Store.Enabled = false
	}
	if flags.Changed("metrics-addr") {
		c.Metrics.Addr = runMetricsAddr
		c.Metrics.Enabled = runMetricsAddr != ""
	}
	if flags.Changed("silence") {
		c.Reasoner.Silence = runSilence
	}
}

func inWorkspace(path string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(workspace, path)
}

func runReasoner(cmd *cobra.Command, args []string) error {
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(args) == 0 && !cfg.Input.Watch {
		return errors.New("no task documents given (pass files or --watch)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := input.NewResolver(cfg.Reasoner)
	var initial []input.Entry
	for _, path := range args {
		entries, err := resolver.ParseFile(path)
		if err != nil {
			return err
		}
		logger.Debug("Loaded task document", zap.String("path", path), zap.Int("tasks", len(entries)))
		initial = append(initial, entries...)
	}

	ev, err := rules.New()
	if err != nil {
		return err
	}

	console := engine.NewConsoleReporter(cmd.OutOrStdout())
	if runQuiet {
		console.Kinds = []memory.ReportKind{memory.ReportAnswer}
	}
	opts := []engine.Option{engine.WithEvaluator(ev), engine.WithReporter(console)}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		opts = append(opts, engine.WithMetrics(collector))
	}

	var (
		history *store.Store
		runID   string
		runLog  *logging.Logger
	)
	if cfg.Store.Enabled {
		history, err = store.Open(inWorkspace(cfg.Store.DatabasePath))
		if err != nil {
			return err
		}
		defer history.Close()

		configYAML, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		runID, err = history.BeginRun(ctx, string(configYAML))
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithReporter(history.Reporter(runID)))
		runLog = logging.WithRunID(logging.CategoryEngine, runID)
		runLog.Info("run started")
		logger.Info("Recording run", zap.String("run_id", runID), zap.String("db", history.Path()))
	}

	eng := engine.New(cfg, opts...)
	eng.Input(initial...)

	started := time.Now()
	if err := serve(ctx, eng, resolver, collector); err != nil {
		return err
	}

	logger.Info("Run finished",
		zap.Int64("cycles", eng.Clock()),
		zap.Int("concepts", eng.ConceptCount()),
		zap.Duration("elapsed", time.Since(started)),
		zap.Any("rules_fired", ev.Fired()),
	)

	if history != nil {
		// The signal context may already be cancelled.
		bg := context.Background()
		snapshot := eng.Snapshot(cfg.Store.SnapshotLimit)
		if err := history.SaveSnapshot(bg, runID, snapshot); err != nil {
			return err
		}
		if err := history.FinishRun(bg, runID, eng.Clock()); err != nil {
			return err
		}
		runLog.Info("run finished after %d cycles, %d concepts saved", eng.Clock(), len(snapshot))
		fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d cycles\n", runID, eng.Clock())
	}
	return nil
}

// serve runs the engine together with the optional watcher and metrics
// server. Everything stops when the engine finishes or ctx is cancelled.
func serve(ctx context.Context, eng *engine.Engine, resolver *input.Resolver, collector *metrics.Collector) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := eng.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.Input.Watch {
		dir := runWatchDir
		if dir == "" {
			dir = filepath.Join(workspace, config.DirName, "inbox")
		}
		w, err := input.NewWatcher(dir, cfg.GetDebounce(), resolver, eng.InputFrom)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Scan(); err != nil {
			logger.Warn("Failed to scan inbox", zap.String("dir", dir), zap.Error(err))
		}
		if err := w.Start(gctx); err != nil {
			cancel()
			_ = g.Wait()
			w.Stop()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Info("Watching for task documents", zap.String("dir", dir))
		g.Go(func() error {
			<-gctx.Done()
			w.Stop()
			st := w.Stats()
			logger.Info("Watcher stopped",
				zap.Int("files", st.FilesLoaded),
				zap.Int("tasks", st.TasksLoaded),
				zap.Int("errors", st.Errors))
			return nil
		})
	}

	if collector != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("Serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
