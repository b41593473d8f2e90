package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/problem"
	"petab-hq/petab/pkg/table"
)

var priorFlagsPDF struct {
	prior   priorFlags
	onScale bool
	format  string
}

var priorMeasurementFlags struct {
	problem   string
	outputDir string
}

var priorCmd = &cobra.Command{
	Use:   "prior",
	Short: "Inspect parameter priors",
}

var priorPDFCmd = &cobra.Command{
	Use:   "pdf X...",
	Short: "Evaluate a prior density",
	Long: `Evaluate the density, log density and CDF of a prior at the given points.

Points are unscaled values unless --on-scale is set, in which case they are
parameter-scale values and the density is with respect to that axis. The
negative log prior is always with respect to the parameter scale.

Examples:
  petab prior pdf 0 0.5 1 --prior normal --params "0;1"
  petab prior pdf -1 0 1 --prior logNormal --params "0;1" --scale log10 --on-scale
  petab prior pdf 0.1 --problem problem.yaml --parameter k1 --format json`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPriorPDF(cmd.Context(), current, cmd.OutOrStdout(), args)
	},
}

var priorToMeasurementsCmd = &cobra.Command{
	Use:   "to-measurements",
	Short: "Rewrite objective priors as observables and measurements",
	Long: `Rewrite the objective priors of estimated parameters as data, for tools
that do not support priors. Each prior becomes an observable prior_<id>
and one measurement of the prior location, with the prior scale as noise
parameter. The optimization problem is unchanged.

The rewritten parameter, observable and measurement tables and a problem
YAML are written to --output-dir. Other tables stay where they are and are
referenced by absolute path. Uniform priors cannot be converted.

Examples:
  petab prior to-measurements --problem problem.yaml --output-dir no-priors`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPriorToMeasurements(cmd.Context(), current, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(priorCmd)
	priorCmd.AddCommand(priorPDFCmd, priorToMeasurementsCmd)

	priorFlagsPDF.prior.register(priorPDFCmd.Flags())
	priorPDFCmd.Flags().BoolVar(&priorFlagsPDF.onScale, "on-scale", false, "points are on the parameter scale")
	priorPDFCmd.Flags().StringVar(&priorFlagsPDF.format, "format", "text", "output format: text, json, csv")

	fs := priorToMeasurementsCmd.Flags()
	fs.StringVar(&priorMeasurementFlags.problem, "problem", "", "problem YAML to convert")
	fs.StringVarP(&priorMeasurementFlags.outputDir, "output-dir", "o", "", "directory for the rewritten problem")
}

// densityPoint is the prior evaluated at one point.
type densityPoint struct {
	X           number `json:"x"`
	PDF         number `json:"pdf"`
	LogPDF      number `json:"log_pdf"`
	CDF         number `json:"cdf"`
	NegLogPrior number `json:"neg_log_prior"`
}

type densityTable struct {
	Prior   string         `json:"prior"`
	OnScale bool           `json:"on_scale"`
	Points  []densityPoint `json:"points"`
}

func (t densityTable) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n", t.Prior); err != nil {
		return err
	}
	for _, p := range t.Points {
		if _, err := fmt.Fprintf(w, "%-12s pdf=%-14s logpdf=%-14s cdf=%s\n", p.X, p.PDF, p.LogPDF, p.CDF); err != nil {
			return err
		}
	}
	return nil
}

func (t densityTable) Header() []string {
	return []string{"x", "pdf", "log_pdf", "cdf", "neg_log_prior"}
}

func (t densityTable) Rows() [][]string {
	rows := make([][]string, len(t.Points))
	for i, p := range t.Points {
		rows[i] = []string{p.X.String(), p.PDF.String(), p.LogPDF.String(), p.CDF.String(), p.NegLogPrior.String()}
	}
	return rows
}

func runPriorPDF(ctx context.Context, a *app, w io.Writer, args []string) error {
	format, err := cli.ParseFormat(priorFlagsPDF.format)
	if err != nil {
		return err
	}
	xs := make([]float64, len(args))
	for i, arg := range args {
		x, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return cli.NewUsageError("", fmt.Sprintf("point %q: %v", arg, err))
		}
		xs[i] = x
	}

	p, _, err := priorFlagsPDF.prior.build(ctx)
	if err != nil {
		return err
	}
	a.collector.RecordPrior(p.Family().String(), true)

	out := densityTable{Prior: p.String(), OnScale: priorFlagsPDF.onScale}
	for _, x := range xs {
		y, u := x, x
		if priorFlagsPDF.onScale {
			u = p.ToUnscaled(x)
		} else {
			y = p.ToScaled(x)
		}
		out.Points = append(out.Points, densityPoint{
			X:           number(x),
			PDF:         number(p.PDF(x, priorFlagsPDF.onScale)),
			LogPDF:      number(p.LogPDF(x, priorFlagsPDF.onScale)),
			CDF:         number(p.CDF(u)),
			NegLogPrior: number(p.NegLogPrior(y)),
		})
	}
	return cli.NewFormatter(format).FormatTo(w, out)
}

func runPriorToMeasurements(ctx context.Context, a *app, w io.Writer) error {
	f := priorMeasurementFlags
	if f.problem == "" {
		return cli.NewUsageError("problem", "is required")
	}
	if f.outputDir == "" {
		return cli.NewUsageError("output-dir", "is required")
	}
	srcDir, err := filepath.Abs(filepath.Dir(f.problem))
	if err != nil {
		return cli.NewCommandError("prior to-measurements", err)
	}
	outDir, err := filepath.Abs(f.outputDir)
	if err != nil {
		return cli.NewCommandError("prior to-measurements", err)
	}
	if outDir == srcDir {
		return cli.NewUsageError("output-dir", "must differ from the problem directory")
	}

	prob, err := problem.Load(ctx, f.problem)
	if err != nil {
		return cli.NewCommandError("prior to-measurements", err)
	}
	conv, err := table.PriorsToMeasurements(prob.Parameters, prob.Observables, prob.Measurements[0])
	if err != nil {
		return cli.NewFindingsError("prior to-measurements", err)
	}

	doc := rebase(prob.File, srcDir)
	doc.ParameterFile = filepath.Base(prob.File.ParameterFile)
	doc.Problems[0].ObservableFiles[0] = filepath.Base(prob.File.Problems[0].ObservableFiles[0])
	doc.Problems[0].MeasurementFiles[0] = filepath.Base(prob.File.Problems[0].MeasurementFiles[0])

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return cli.NewCommandError("prior to-measurements", err)
	}
	for name, t := range map[string]*table.Table{
		doc.ParameterFile:                   conv.Parameters,
		doc.Problems[0].ObservableFiles[0]:  conv.Observables,
		doc.Problems[0].MeasurementFiles[0]: conv.Measurements,
	} {
		if err := writeTable(filepath.Join(outDir, name), t); err != nil {
			return cli.NewCommandError("prior to-measurements", err)
		}
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return cli.NewCommandError("prior to-measurements", err)
	}
	yamlPath := filepath.Join(outDir, filepath.Base(f.problem))
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		return cli.NewCommandError("prior to-measurements", err)
	}

	a.logger.InfoContext(ctx, "priors converted to measurements",
		"problem", f.problem, "output", yamlPath, "count", len(conv.Converted))
	if len(conv.Converted) == 0 {
		_, err = fmt.Fprintf(w, "no objective priors to convert\nwrote %s\n", yamlPath)
		return err
	}
	_, err = fmt.Fprintf(w, "converted %d priors: %s\nwrote %s\n",
		len(conv.Converted), strings.Join(conv.Converted, ", "), yamlPath)
	return err
}

// rebase copies f with every file resolved against dir, so the copy can be
// written to another directory.
func rebase(f problem.File, dir string) problem.File {
	abs := func(names []string) []string {
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = name
			if !filepath.IsAbs(name) {
				out[i] = filepath.Join(dir, name)
			}
		}
		return out
	}
	out := f
	out.ParameterFile = abs([]string{f.ParameterFile})[0]
	out.Problems = make([]problem.Subproblem, len(f.Problems))
	for i, sub := range f.Problems {
		out.Problems[i] = problem.Subproblem{
			ModelFiles:         abs(sub.ModelFiles),
			ConditionFiles:     abs(sub.ConditionFiles),
			MeasurementFiles:   abs(sub.MeasurementFiles),
			ObservableFiles:    abs(sub.ObservableFiles),
			VisualizationFiles: abs(sub.VisualizationFiles),
		}
	}
	return out
}

func writeTable(path string, t *table.Table) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(out); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}
