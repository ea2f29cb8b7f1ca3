package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/decision/engine"
	"mercator-hq/underwriter/pkg/decision/source"
	"mercator-hq/underwriter/pkg/report"
	"mercator-hq/underwriter/pkg/telemetry/health"
	"mercator-hq/underwriter/pkg/telemetry/metrics"
	"mercator-hq/underwriter/pkg/telemetry/tracing"
)

// decideOptions holds the decide command flags.
type decideOptions struct {
	profiles           string
	applications       string
	format             string
	summary            bool
	workers            int
	profileParallelism bool
	maxBatchSize       int
	rejectMode         string
	metricsFile        string
	watch              bool
	listen             string
	progress           bool
}

var decideFlags decideOptions

// errInputRejected marks a run that decided the valid input and skipped
// the rest.
var errInputRejected = errors.New("input rejected")

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Decide a batch of applications",
	Long: `Evaluate every application against every decision profile.

For each application the command reports the decision of each profile, the
aggregated system decision, whether the application needs manual review and
the decline reason codes of the rules that fired.

Profiles and applications may be single files or directories of .json,
.jsonl, .yaml and .yml files. Entities that cannot be decoded or are
structurally invalid are listed as rejected and skipped, or fail the run
with --reject-mode fail.

Flags override the configuration file, which overrides the defaults.

Examples:
  # Decide a batch with the text table
  underwriter decide --profiles profiles/ --applications apps.json

  # JSON output with the comparison summary
  underwriter decide --profiles profiles/ --applications apps.json --format json --summary

  # CSV for spreadsheets, one row per application and profile
  underwriter decide --profiles profiles/ --applications apps.jsonl --format csv > decisions.csv

  # Re-run whenever a profile changes, serving /healthz and /metrics
  underwriter decide --profiles profiles/ --applications apps.json --watch --listen :9090`,
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)

	decideCmd.Flags().StringVarP(&decideFlags.profiles, "profiles", "p", "", "profile file or directory")
	decideCmd.Flags().StringVarP(&decideFlags.applications, "applications", "a", "", "application file or directory")
	decideCmd.Flags().StringVarP(&decideFlags.format, "format", "f", "", "output format: text, json, csv")
	decideCmd.Flags().BoolVar(&decideFlags.summary, "summary", false, "include the manual comparison summary")
	decideCmd.Flags().IntVar(&decideFlags.workers, "workers", 0, "concurrent applications (0 = number of CPUs)")
	decideCmd.Flags().BoolVar(&decideFlags.profileParallelism, "profile-parallelism", false, "score the profiles of one application concurrently")
	decideCmd.Flags().IntVar(&decideFlags.maxBatchSize, "max-batch-size", 0, "maximum applications per run (0 = unlimited)")
	decideCmd.Flags().StringVar(&decideFlags.rejectMode, "reject-mode", "", "invalid input handling: skip, fail")
	decideCmd.Flags().StringVar(&decideFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after each run")
	decideCmd.Flags().BoolVarP(&decideFlags.watch, "watch", "w", false, "re-run when profiles change")
	decideCmd.Flags().StringVar(&decideFlags.listen, "listen", "", "health and metrics listen address in watch mode")
	decideCmd.Flags().BoolVar(&decideFlags.progress, "progress", false, "show a progress bar on stderr")
}

// applyDecideFlags overrides configuration values with the flags that were
// given a value.
func applyDecideFlags(cfg *config.Config) {
	if decideFlags.profiles != "" {
		cfg.Input.Profiles = decideFlags.profiles
	}
	if decideFlags.applications != "" {
		cfg.Input.Applications = decideFlags.applications
	}
	if decideFlags.format != "" {
		cfg.Output.Format = decideFlags.format
	}
	if decideFlags.summary {
		cfg.Output.Summary = true
	}
	if decideFlags.workers > 0 {
		cfg.Engine.Workers = decideFlags.workers
	}
	if decideFlags.profileParallelism {
		cfg.Engine.ProfileParallelism = true
	}
	if decideFlags.maxBatchSize > 0 {
		cfg.Engine.MaxBatchSize = decideFlags.maxBatchSize
	}
	if decideFlags.rejectMode != "" {
		cfg.Engine.RejectMode = decideFlags.rejectMode
	}
	if decideFlags.metricsFile != "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.TextfilePath = decideFlags.metricsFile
	}
	if decideFlags.watch {
		cfg.Input.Watch = true
	}
	if decideFlags.listen != "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.ListenAddress = decideFlags.listen
	}
}

// decideConfig returns the published configuration with the global and
// decide flags applied. Every run calls it, so a reloaded configuration
// file takes effect on the next run.
func decideConfig() (*config.Config, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	applyDecideFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("decide", err.Error())
	}
	if cfg.Input.Profiles == "" {
		return nil, cli.NewConfigError("profiles", "--profiles or input.profiles is required")
	}
	if cfg.Input.Applications == "" {
		return nil, cli.NewConfigError("applications", "--applications or input.applications is required")
	}
	return cfg, nil
}

func runDecide(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	cfg, err := decideConfig()
	if err != nil {
		return err
	}

	format, err := cli.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr(cmd))
	if err != nil {
		return err
	}

	parent := context.Background()
	if cmd != nil && cmd.Context() != nil {
		parent = cmd.Context()
	}
	ctx, stop := cli.SetupSignalHandler(parent)
	defer stop()

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("decide", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	d := &decider{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:    tracer,
		formatter: cli.NewFormatter(format),
		csv:       format == cli.FormatCSV,
		out:       stdout(cmd),
		errOut:    stderr(cmd),
		progress:  decideFlags.progress,
	}

	if cfg.Input.Watch {
		return d.watch(ctx)
	}
	return d.run(ctx)
}

// decider runs decision batches for one command invocation. Logging,
// output format and telemetry keep their startup settings; input, engine
// and summary settings are read again for every run.
type decider struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
	formatter cli.Formatter
	csv       bool
	out       io.Writer
	errOut    io.Writer
	progress  bool

	// mu serializes runs triggered by the watcher.
	mu sync.Mutex
}

// run loads the inputs, decides the batch and writes the result. Rejected
// input in skip mode still produces output but fails with ExitRejected.
func (d *decider) run(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg, err := decideConfig()
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithLogger(d.logger),
		engine.WithRecorder(d.collector),
		engine.WithTracer(d.tracer.Tracer()),
	}
	if d.progress {
		opts = append(opts, engine.WithProgress(cli.EngineProgress(cli.NewProgressReporter(d.errOut))))
	}
	eng, err := engine.New(cfg.EngineOptions(), opts...)
	if err != nil {
		return cli.NewCommandError("decide", err)
	}

	profiles, err := source.NewFileSource(cfg.Input.Profiles, d.logger).LoadProfiles(ctx)
	if err != nil {
		return cli.NewCommandError("decide", fmt.Errorf("failed to load profiles: %w", err))
	}
	apps, err := source.NewFileSource(cfg.Input.Applications, d.logger).LoadApplications(ctx)
	if err != nil {
		return cli.NewCommandError("decide", fmt.Errorf("failed to load applications: %w", err))
	}

	decodeRejected := make([]engine.Rejection, 0, len(profiles.Rejected)+len(apps.Rejected))
	decodeRejected = append(decodeRejected, profiles.Rejected...)
	decodeRejected = append(decodeRejected, apps.Rejected...)
	for _, r := range decodeRejected {
		d.collector.RecordRejection(r.Kind)
	}
	if cfg.EngineOptions().RejectMode == engine.RejectFail && len(decodeRejected) > 0 {
		return cli.NewCommandError("decide", rejectionsError(decodeRejected))
	}

	result, decideErr := eng.Decide(ctx, apps.Applications, profiles.Profiles)
	if result == nil {
		return cli.NewCommandError("decide", decideErr)
	}
	result.Rejected = append(decodeRejected, result.Rejected...)

	var summary *report.Summary
	if cfg.Output.Summary {
		summary = report.Summarize(result)
	}
	if err := d.formatter.FormatTo(d.out, result, summary); err != nil {
		return cli.NewCommandError("decide", fmt.Errorf("failed to write results: %w", err))
	}
	if d.csv && summary != nil {
		if err := summary.WriteText(d.errOut); err != nil {
			return cli.NewCommandError("decide", fmt.Errorf("failed to write summary: %w", err))
		}
	}

	if path := d.cfg.Telemetry.Metrics.TextfilePath; path != "" {
		if err := d.collector.WriteTextfile(path); err != nil {
			return cli.NewCommandError("decide", err)
		}
	}

	if decideErr != nil {
		return cli.NewCommandError("decide", decideErr)
	}
	if len(result.Rejected) > 0 {
		return cli.NewCommandError("decide", fmt.Errorf("%w: %w", errInputRejected, rejectionsError(result.Rejected)))
	}
	return nil
}

// watch runs once, then again after every change to the profiles or to the
// configuration file, until ctx is cancelled. Run failures are logged and
// reported by the readiness endpoint; runs that only rejected input count
// as healthy.
func (d *decider) watch(ctx context.Context) error {
	tracker := health.NewRunTracker()
	runAndRecord := func() error {
		err := d.run(ctx)
		if errors.Is(err, errInputRejected) {
			d.logger.Warn("decision run rejected input", "error", err)
			err = nil
		}
		tracker.Record(err)
		return err
	}

	if addr := d.cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		checker := health.New(0)
		checker.RegisterCheck("last_run", tracker.Check)
		server := &http.Server{
			Addr:              addr,
			Handler:           health.NewMux(checker, d.collector.Handler()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			d.logger.Info("health server listening", "address", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.logger.Error("health server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	if err := runAndRecord(); err != nil {
		d.logger.Error("decision run failed", "error", err)
	}
	d.flushSpans(ctx)

	profiles, err := d.newWatcher(d.cfg.Input.Profiles)
	if err != nil {
		return cli.NewCommandError("decide", err)
	}
	defer func() { _ = profiles.Stop() }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return profiles.Watch(gctx, func() error {
			defer d.flushSpans(gctx)
			return runAndRecord()
		})
	})

	if configFileExists() {
		configWatcher, err := d.newWatcher(cfgFile)
		if err != nil {
			return cli.NewCommandError("decide", err)
		}
		defer func() { _ = configWatcher.Stop() }()

		g.Go(func() error {
			return configWatcher.Watch(gctx, func() error {
				if err := reloadConfig(); err != nil {
					tracker.Record(err)
					return err
				}
				d.logger.Info("configuration reloaded", "path", cfgFile)
				defer d.flushSpans(gctx)
				return runAndRecord()
			})
		})
	}

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("decide", err)
	}
	return nil
}

// newWatcher watches path with the configured debounce interval.
func (d *decider) newWatcher(path string) (*source.Watcher, error) {
	wcfg := source.DefaultWatcherConfig()
	wcfg.Path = path
	wcfg.DebounceInterval = d.cfg.Input.DebounceInterval
	return source.NewWatcher(wcfg, d.logger)
}

// flushSpans exports the spans of the last run so that a long watch does
// not hold them until shutdown.
func (d *decider) flushSpans(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.tracer.ForceFlush(flushCtx); err != nil {
		d.logger.Warn("tracer flush failed", "error", err)
	}
}

// configFileExists reports whether the --config path names a regular file.
func configFileExists() bool {
	if cfgFile == "" {
		return false
	}
	info, err := os.Stat(cfgFile)
	return err == nil && info.Mode().IsRegular()
}

// rejectionsError converts decode rejections into the error returned when
// invalid input fails the run.
func rejectionsError(rejected []engine.Rejection) error {
	errs := make([]*engine.StructuralError, len(rejected))
	for i, r := range rejected {
		errs[i] = &engine.StructuralError{
			Kind:     r.Kind,
			Index:    r.Index,
			ID:       r.ID,
			Problems: []string{r.Reason},
		}
	}
	return &engine.BatchValidationError{Errors: errs}
}
