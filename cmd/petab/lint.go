package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/formula"
	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/lint"
	"petab-hq/petab/pkg/problem"
	"petab-hq/petab/pkg/samplestore/retention"
	"petab-hq/petab/pkg/telemetry/health"
	"petab-hq/petab/pkg/telemetry/logging"
	"petab-hq/petab/pkg/telemetry/metrics"
	"petab-hq/petab/pkg/watch"
)

var lintFlags struct {
	strict   bool
	format   string
	workers  int
	symbols  []string
	watch    bool
	debounce time.Duration
}

var lintCmd = &cobra.Command{
	Use:   "lint PROBLEM.yaml",
	Short: "Validate a PEtab problem",
	Long: `Validate a PEtab problem and all tables it references.

The lint command checks:
  - table structure and required columns
  - parameter rows (scales, bounds, nominal values, estimate flags)
  - observable and noise formulas against the symbols in scope
  - condition table cells
  - objective and initialization priors
  - measurement rows against observables and conditions

Model entities are unknown without the model file. Declare them with
--symbols or lint.model_symbols_file to turn unknown identifiers from
warnings into errors.

Exit status is 1 if errors were found (or warnings, with --strict).

Examples:
  petab lint problem.yaml
  petab lint problem.yaml --strict --format json
  petab lint problem.yaml --symbols A,B,compartment
  petab lint problem.yaml --watch`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lintFlags.watch {
			return runLintWatch(cmd.Context(), current, cmd.OutOrStdout(), args[0])
		}
		_, err := runLint(cmd.Context(), current, cmd.OutOrStdout(), args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors (default from lint.strict)")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json, csv")
	lintCmd.Flags().IntVar(&lintFlags.workers, "workers", 0, "formulas validated concurrently (default from lint.workers)")
	lintCmd.Flags().StringSliceVar(&lintFlags.symbols, "symbols", nil, "model entity IDs, comma separated")
	lintCmd.Flags().BoolVarP(&lintFlags.watch, "watch", "w", false, "re-lint when the problem or its tables change")
	lintCmd.Flags().DurationVar(&lintFlags.debounce, "debounce", watch.DefaultDebounce, "quiet period before re-linting in watch mode")
}

// linter builds a linter from the current configuration and flags.
func (a *app) linter() (*lint.Linter, *formula.Cache, error) {
	strict := a.cfg.Lint.Strict || lintFlags.strict
	pipeline, cache := a.pipeline(strict)

	workers := a.cfg.Lint.Workers
	if lintFlags.workers > 0 {
		workers = lintFlags.workers
	}
	l := lint.NewLinter().
		WithPipeline(pipeline).
		WithWorkers(workers).
		WithLogger(a.logger.Slog()).
		WithPriorRecorder(a.collector)

	model, err := a.cfg.Lint.Symbols()
	if err != nil {
		return nil, nil, cli.NewUsageError("symbols", err.Error())
	}
	model = append(model, lintFlags.symbols...)
	if len(model) > 0 {
		kinds := make(map[string]symbols.Kind, len(model))
		for _, name := range model {
			if !symbols.IsValidIdentifier(name) {
				return nil, nil, cli.NewUsageError("symbols", fmt.Sprintf("invalid identifier %q", name))
			}
			kinds[name] = symbols.Species
		}
		l.WithModelSymbols(kinds)
	}
	return l, cache, nil
}

// runLint loads and lints the problem once and writes the report.
func runLint(ctx context.Context, a *app, w io.Writer, path string) (*lint.Report, error) {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return nil, err
	}
	l, cache, err := a.linter()
	if err != nil {
		return nil, err
	}

	ctx = logging.WithProblem(ctx, path)
	prob, err := problem.Load(ctx, path)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to load problem", "error", err)
		return nil, cli.NewCommandError("lint", err)
	}
	report, err := l.Lint(ctx, prob)
	if err != nil {
		return nil, cli.NewCommandError("lint", err)
	}
	a.collector.RecordLintRun(report.Duration, report.ErrorCount(), report.WarningCount())
	a.collector.UpdateCacheSize(metrics.FormulaCache, cache.Len())

	if err := cli.NewFormatter(format).FormatTo(w, reportView{report}); err != nil {
		return report, cli.NewCommandError("lint", err)
	}
	strict := a.cfg.Lint.Strict || lintFlags.strict
	if report.HasErrors() || (strict && report.WarningCount() > 0) {
		return report, cli.NewFindingsError("lint", errors.New(report.Summary()))
	}
	return report, nil
}

// runLintWatch lints once, then again after every change to the problem
// file, its tables or the config file, until ctx is done. With metrics
// enabled and a listen address set, metrics and health probes are served
// for the lifetime of the watch.
func runLintWatch(ctx context.Context, a *app, w io.Writer, path string) error {
	paths := watchList(path)

	var (
		tracker health.RunTracker
		mu      sync.Mutex
	)
	// Debounced callbacks may overlap when a run outlasts the quiet period.
	lintOnce := func() {
		mu.Lock()
		defer mu.Unlock()
		_, err := runLint(ctx, a, w, path)
		// Findings do not make the watcher unhealthy; failing to load does.
		if cli.ExitCode(err) == cli.ExitFindings {
			err = nil
		}
		tracker.Record(err)
		if err != nil {
			a.logger.Error("lint run failed", "problem", path, "error", err)
		}
	}

	if addr := a.cfg.Telemetry.Metrics.ListenAddress; a.collector.Enabled() && addr != "" {
		checker := health.New(0)
		checker.Register("lint", tracker.Check)
		go func() {
			if err := a.collector.Serve(ctx, addr, a.cfg.Telemetry.Metrics.Path, checker.Mount(Version)); err != nil {
				a.logger.Error("metrics server stopped", "address", addr, "error", err)
			}
		}()
		a.logger.Info("serving metrics and health probes", "address", addr)
	}

	if a.cfg.Store.Retention.Schedule != "" {
		stop, err := a.startRetention(ctx)
		if err != nil {
			return cli.NewCommandError("lint", err)
		}
		defer stop()
	}

	watcher, err := watch.New(watch.Config{Paths: paths, Debounce: lintFlags.debounce}, a.logger.Slog())
	if err != nil {
		return cli.NewCommandError("lint", err)
	}
	defer watcher.Stop()

	lintOnce()
	a.logger.Info("watching for changes", "files", len(paths))

	err = watcher.Watch(ctx, func(changed []string) error {
		a.logger.Info("files changed, re-linting", "changed", changed)
		mu.Lock()
		if cfgFile != "" && slices.Contains(changed, absPath(cfgFile)) {
			if err := a.reloadConfig(); err != nil {
				// Keep linting with the previous configuration.
				a.logger.Error("failed to reload config", "error", err)
			}
		}
		if slices.Contains(changed, absPath(path)) {
			// The problem file may now reference other tables.
			if err := watcher.SetPaths(watchList(path)); err != nil {
				a.logger.Error("failed to update watched files", "error", err)
			}
		}
		mu.Unlock()
		lintOnce()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("lint", err)
	}
	return nil
}

// startRetention prunes the sample store on store.retention.schedule
// until the returned stop function is called.
func (a *app) startRetention(ctx context.Context) (func(), error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	pruner := retention.NewPruner(store, a.cfg.Store.Retention).WithLogger(a.logger.Slog())
	scheduler := retention.NewScheduler(pruner)
	if err := scheduler.Start(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return func() {
		scheduler.Stop()
		store.Close()
	}, nil
}

// reloadConfig re-reads the configuration file and applies the new log
// level. Flag overrides such as --log-level are re-applied by a.reload.
func (a *app) reloadConfig() error {
	if a.reload == nil {
		return errors.New("configuration was not loaded from a file")
	}
	cfg, err := a.reload()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := a.logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
		a.logger.Warn("ignoring log level from reloaded config", "error", err)
	}
	return nil
}

// watchList returns the files lint --watch follows: the problem, its
// tables and the config file.
func watchList(path string) []string {
	paths := watchedPaths(path)
	if cfgFile != "" {
		paths = append(paths, cfgFile)
	}
	return paths
}

// watchedPaths returns the problem file and, if it parses, every table it
// references.
func watchedPaths(path string) []string {
	paths := []string{path}
	data, err := os.ReadFile(path)
	if err != nil {
		return paths
	}
	f, err := problem.Parse(data)
	if err != nil {
		return paths
	}
	return append(paths, f.Files(filepath.Dir(path))...)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// reportView renders a lint report as text or CSV. JSON output is the
// report itself.
type reportView struct {
	*lint.Report
}

func (v reportView) WriteText(w io.Writer) error {
	for _, f := range v.Findings {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
		if ctx := f.Context(); ctx != "" {
			fmt.Fprint(w, ctx)
		}
	}
	if len(v.Findings) > 0 {
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", v.Problem, v.Summary())
	return err
}

func (v reportView) Header() []string {
	return []string{"severity", "table", "row", "column", "message", "formula", "suggestion"}
}

func (v reportView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Findings))
	for _, f := range v.Findings {
		row := ""
		if f.Row > 0 {
			row = strconv.Itoa(f.Row)
		}
		rows = append(rows, []string{
			string(f.Severity), f.Table, row, f.Column, f.Message, f.Formula, f.Suggestion,
		})
	}
	return rows
}
