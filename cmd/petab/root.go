package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/config"
	"petab-hq/petab/pkg/telemetry/logging"
	"petab-hq/petab/pkg/telemetry/metrics"
	"petab-hq/petab/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

// current is the runtime built by the root command before any subcommand
// runs.
var current *app

var rootCmd = &cobra.Command{
	Use:   "petab",
	Short: "Check PEtab problems, formulas and priors",
	Long: `petab validates PEtab parameter estimation problems.

It lints parameter, condition, observable and measurement tables, evaluates
and simplifies PEtab math formulas, draws samples from parameter priors and
computes noise model likelihoods.

Configuration is read from --config (YAML) and PETAB_* environment
variables.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// app holds the configured ambient services shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer

	// reload re-reads the configuration file with flag overrides applied.
	reload func() (*config.Config, error)
}

// newApp builds the logger, metrics collector and tracer from cfg. Log
// output goes to stderr.
func newApp(cfg *config.Config, stderr io.Writer) (*app, error) {
	logger, err := logging.FromConfig(cfg.Telemetry.Logging, stderr)
	if err != nil {
		return nil, cli.NewUsageError("", fmt.Sprintf("logging: %v", err))
	}
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:    tracer,
	}, nil
}

// close flushes telemetry. Errors are logged, not returned, so they never
// mask the command's own result.
func (a *app) close() {
	if path := a.cfg.Telemetry.Metrics.Textfile; a.collector.Enabled() && path != "" {
		if err := a.collector.WriteTextfile(path); err != nil {
			a.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
}

// flagOverrides returns the configuration changes requested by global
// flags. They are applied on load and again on every reload.
func flagOverrides() []config.Override {
	var overrides []config.Override
	if logLevel != "" {
		level := logLevel
		overrides = append(overrides, func(c *config.Config) { c.Telemetry.Logging.Level = level })
	}
	return overrides
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile, flagOverrides()...); err != nil {
		return cli.NewUsageError("config", err.Error())
	}
	cfg := config.GetConfig()
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.reload = func() (*config.Config, error) {
		if err := config.ReloadConfig(); err != nil {
			return nil, err
		}
		return config.GetConfig(), nil
	}
	current = a
	a.logger.Debug("configuration loaded", "config", cfgFile, "store", cfg.Store.Backend)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, cancel := cli.SetupSignalHandler(context.Background())
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		current.close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.NewUsageError("", err.Error())
	})
}
