package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/prior"
	"petab-hq/petab/pkg/samplestore"
	"petab-hq/petab/pkg/samplestore/retention"
	"petab-hq/petab/pkg/telemetry/logging"
	"petab-hq/petab/pkg/telemetry/tracing"
)

// sampleChunk is the number of draws between progress updates.
const sampleChunk = 1000

var sampleFlags struct {
	prior     priorFlags
	count     int
	seed      uint64
	unscaled  bool
	save      bool
	progress  bool
	format    string
	parameter string
	maxAge    time.Duration
	maxBatch  int
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw samples from a parameter prior",
	Long: `Draw samples from a prior given inline or read from a parameter table.

Samples are on the parameter scale unless --unscaled is set. Bounds
truncate the distribution. With --save the batch is written to the
configured sample store and can be listed later with "petab sample list".

A seed of 0 picks a random seed; the seed used is recorded in the batch.

Examples:
  petab sample --prior normal --params "0;1" --count 5
  petab sample --prior logNormal --params "0;0.5" --scale log10 --lower 0.1 --upper 10
  petab sample --problem problem.yaml --parameter k1 --kind initialization --save
  petab sample --prior uniform --params "0;1" --count 100000 --format csv --progress`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSample(cmd.Context(), current, cmd.OutOrStdout(), cmd.ErrOrStderr(),
			cmd.Flags().Changed("count"), cmd.Flags().Changed("seed"))
	},
}

var sampleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sample batches",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSampleList(cmd.Context(), current, cmd.OutOrStdout())
	},
}

var sampleShowCmd = &cobra.Command{
	Use:   "show BATCH_ID",
	Short: "Print a saved sample batch",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSampleShow(cmd.Context(), current, cmd.OutOrStdout(), args[0])
	},
}

var samplePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old sample batches",
	Long: `Delete sample batches older than --max-age, then the oldest batches
beyond --max-batches. Limits default to store.retention in the
configuration file.

Examples:
  petab sample prune --max-age 720h
  petab sample prune --max-batches 100`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSamplePrune(cmd.Context(), current, cmd.OutOrStdout(),
			cmd.Flags().Changed("max-age"), cmd.Flags().Changed("max-batches"))
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.AddCommand(sampleListCmd, sampleShowCmd, samplePruneCmd)

	fs := sampleCmd.Flags()
	sampleFlags.prior.register(fs)
	fs.IntVarP(&sampleFlags.count, "count", "n", 0, "number of samples (default from sampling.count)")
	fs.Uint64Var(&sampleFlags.seed, "seed", 0, "random seed (default from sampling.seed)")
	fs.BoolVar(&sampleFlags.unscaled, "unscaled", false, "return unscaled values")
	fs.BoolVar(&sampleFlags.save, "save", false, "save the batch to the sample store")
	fs.BoolVar(&sampleFlags.progress, "progress", false, "show a progress bar on stderr")

	sampleCmd.PersistentFlags().StringVar(&sampleFlags.format, "format", "text", "output format: text, json, csv")
	sampleListCmd.Flags().StringVarP(&sampleFlags.parameter, "parameter", "p", "", "only batches of this parameter")
	samplePruneCmd.Flags().DurationVar(&sampleFlags.maxAge, "max-age", 0, "delete batches older than this (default from store.retention.max_age)")
	samplePruneCmd.Flags().IntVar(&sampleFlags.maxBatch, "max-batches", 0, "keep at most this many batches (default from store.retention.max_batches)")
}

// openStore opens the configured sample store and checks that it is usable.
func (a *app) openStore(ctx context.Context) (samplestore.Store, error) {
	store, err := samplestore.Open(a.cfg.Store.Backend, a.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func runSample(ctx context.Context, a *app, w, stderr io.Writer, countSet, seedSet bool) (err error) {
	format, err := cli.ParseFormat(sampleFlags.format)
	if err != nil {
		return err
	}
	count := a.cfg.Sampling.Count
	if countSet {
		count = sampleFlags.count
	}
	if count <= 0 {
		return cli.NewUsageError("count", "must be positive")
	}
	seed := a.cfg.Sampling.Seed
	if seedSet {
		seed = sampleFlags.seed
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	unscaled := a.cfg.Sampling.Unscaled || sampleFlags.unscaled

	p, parameterID, err := sampleFlags.prior.build(ctx)
	if err != nil {
		return err
	}
	a.collector.RecordPrior(p.Family().String(), true)

	ctx = logging.WithParameter(ctx, parameterID)
	ctx, span := tracing.Start(ctx, "sample", tracing.Parameter(parameterID))
	defer func() { tracing.End(span, err) }()
	tracing.SetSampleAttributes(span, p.Family().String(), p.Scale().String(), count, seed)

	start := time.Now()
	samples := drawSamples(p, rand.New(rand.NewPCG(seed, seed)), count, unscaled, stderr)
	a.collector.RecordSamples(p.Family().String(), len(samples))
	a.logger.InfoContext(ctx, "samples drawn",
		"prior", p.String(), "count", len(samples), "seed", seed,
		"duration_ms", time.Since(start).Milliseconds())

	batch := samplestore.NewBatch(parameterID, p, samples, seed)
	if sampleFlags.save {
		if err := saveBatch(ctx, a, batch); err != nil {
			return cli.NewCommandError("sample", err)
		}
		a.logger.InfoContext(ctx, "sample batch saved", "batch", batch.ID, "backend", a.cfg.Store.Backend)
	}
	return cli.NewFormatter(format).FormatTo(w, batchView{batch})
}

// drawSamples draws count values in chunks so progress can be reported.
func drawSamples(p *prior.Prior, rng *rand.Rand, count int, unscaled bool, progressOut io.Writer) []prior.Sample {
	var progress *cli.SimpleProgress
	if sampleFlags.progress {
		progress = cli.NewProgressReporter(progressOut, "samples")
		progress.Start(int64(count))
	}
	samples := make([]prior.Sample, 0, count)
	for len(samples) < count {
		n := min(sampleChunk, count-len(samples))
		if unscaled {
			samples = append(samples, p.SampleUnscaled(rng, n)...)
		} else {
			samples = append(samples, p.Sample(rng, n)...)
		}
		if progress != nil {
			progress.Add(int64(n))
		}
	}
	if progress != nil {
		progress.Finish()
	}
	return samples
}

func saveBatch(ctx context.Context, a *app, batch *samplestore.Batch) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveBatch(ctx, batch)
}

func runSampleList(ctx context.Context, a *app, w io.Writer) error {
	format, err := cli.ParseFormat(sampleFlags.format)
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return cli.NewCommandError("sample list", err)
	}
	defer store.Close()

	batches, err := store.ListBatches(ctx, sampleFlags.parameter)
	if err != nil {
		return cli.NewCommandError("sample list", err)
	}
	return cli.NewFormatter(format).FormatTo(w, batchList(batches))
}

func runSampleShow(ctx context.Context, a *app, w io.Writer, id string) error {
	format, err := cli.ParseFormat(sampleFlags.format)
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return cli.NewCommandError("sample show", err)
	}
	defer store.Close()

	batch, err := store.Batch(ctx, id)
	if err != nil {
		return cli.NewCommandError("sample show", err)
	}
	return cli.NewFormatter(format).FormatTo(w, batchView{batch})
}

func runSamplePrune(ctx context.Context, a *app, w io.Writer, maxAgeSet, maxBatchesSet bool) error {
	cfg := a.cfg.Store.Retention
	if maxAgeSet {
		if sampleFlags.maxAge < 0 {
			return cli.NewUsageError("max-age", "cannot be negative")
		}
		cfg.MaxAge = sampleFlags.maxAge
	}
	if maxBatchesSet {
		if sampleFlags.maxBatch < 0 {
			return cli.NewUsageError("max-batches", "cannot be negative")
		}
		cfg.MaxBatches = sampleFlags.maxBatch
	}
	if !cfg.Enabled() {
		return cli.NewUsageError("max-age", "no retention limit set; pass --max-age or --max-batches")
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return cli.NewCommandError("sample prune", err)
	}
	defer store.Close()

	deleted, err := retention.NewPruner(store, cfg).WithLogger(a.logger.Slog()).Prune(ctx)
	if err != nil {
		return cli.NewCommandError("sample prune", err)
	}
	_, err = fmt.Fprintf(w, "pruned %d batches\n", deleted)
	return err
}

// batchView renders a batch: values one per line as text, index and value
// as CSV.
type batchView struct {
	*samplestore.Batch
}

func (v batchView) WriteText(w io.Writer) error {
	for _, x := range v.Values {
		if _, err := fmt.Fprintln(w, strconv.FormatFloat(x, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

func (v batchView) Header() []string {
	return []string{"index", "value"}
}

func (v batchView) Rows() [][]string {
	rows := make([][]string, len(v.Values))
	for i, x := range v.Values {
		rows[i] = []string{strconv.Itoa(i), strconv.FormatFloat(x, 'g', -1, 64)}
	}
	return rows
}

// batchList renders batch metadata.
type batchList []*samplestore.Batch

func (l batchList) WriteText(w io.Writer) error {
	for _, b := range l {
		axis := "unscaled"
		if b.Scaled {
			axis = "scaled"
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %s  n=%d  %s  seed=%d  %s\n",
			b.ID, b.ParameterID, b.Prior, b.Count, axis, b.Seed, b.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

func (l batchList) Header() []string {
	return []string{"id", "parameter_id", "prior", "count", "scaled", "seed", "created_at"}
}

func (l batchList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, b := range l {
		rows[i] = []string{
			b.ID, b.ParameterID, b.Prior, strconv.Itoa(b.Count),
			strconv.FormatBool(b.Scaled), strconv.FormatUint(b.Seed, 10),
			b.CreatedAt.Format(time.RFC3339),
		}
	}
	return rows
}
