package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/prior"
	"petab-hq/petab/pkg/problem"
	"petab-hq/petab/pkg/scale"
	"petab-hq/petab/pkg/table"
)

// usageArgs makes argument validation failures exit with the usage code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return cli.NewUsageError("", err.Error())
		}
		return nil
	}
}

// parseBindings reads name=value pairs from repeated --set flags.
func parseBindings(pairs []string) (eval.Bindings, error) {
	b := make(eval.Bindings, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, cli.NewUsageError("set", fmt.Sprintf("%q is not name=value", pair))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, cli.NewUsageError("set", fmt.Sprintf("value of %s: %v", name, err))
		}
		b[name] = v
	}
	return b, nil
}

// parseOptionalFloat parses a bound flag; empty means unset (NaN).
func parseOptionalFloat(flag, s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, cli.NewUsageError(flag, err.Error())
	}
	return v, nil
}

// priorFlags selects a prior either inline (--prior, --params, --scale,
// --lower, --upper) or from a parameter table row (--problem, --parameter).
type priorFlags struct {
	family    string
	params    string
	scale     string
	lower     string
	upper     string
	problem   string
	parameter string
	kind      string
}

func (f *priorFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.family, "prior", "", "prior type, e.g. normal, logNormal, parameterScaleUniform")
	fs.StringVar(&f.params, "params", "", `prior parameters as "a;b"`)
	fs.StringVar(&f.scale, "scale", "lin", "parameter scale: lin, log or log10")
	fs.StringVar(&f.lower, "lower", "", "lower bound (unscaled)")
	fs.StringVar(&f.upper, "upper", "", "upper bound (unscaled)")
	fs.StringVar(&f.problem, "problem", "", "problem YAML to read the prior from")
	fs.StringVarP(&f.parameter, "parameter", "p", "", "parameter ID (required with --problem)")
	fs.StringVar(&f.kind, "kind", "objective", "prior kind with --problem: objective or initialization")
}

func (f *priorFlags) priorKind() (prior.Kind, error) {
	switch f.kind {
	case "", "objective":
		return prior.Objective, nil
	case "initialization":
		return prior.Initialization, nil
	}
	return 0, cli.NewUsageError("kind", fmt.Sprintf("unknown prior kind %q (want objective or initialization)", f.kind))
}

// build returns the selected prior and the parameter ID it belongs to.
func (f *priorFlags) build(ctx context.Context) (*prior.Prior, string, error) {
	kind, err := f.priorKind()
	if err != nil {
		return nil, "", err
	}
	if f.problem != "" {
		return f.fromProblem(ctx, kind)
	}

	sc, err := scale.Parse(f.scale)
	if err != nil {
		return nil, "", cli.NewUsageError("scale", err.Error())
	}
	lower, err := parseOptionalFloat("lower", f.lower)
	if err != nil {
		return nil, "", err
	}
	upper, err := parseOptionalFloat("upper", f.upper)
	if err != nil {
		return nil, "", err
	}
	if math.IsNaN(lower) != math.IsNaN(upper) {
		return nil, "", cli.NewUsageError("lower", "--lower and --upper must be given together")
	}

	id := f.parameter
	if id == "" {
		id = "parameter"
	}
	row := prior.Row{
		ParameterID:     id,
		Scale:           sc,
		LowerBound:      lower,
		UpperBound:      upper,
		PriorType:       f.family,
		PriorParameters: f.params,
	}
	p, err := prior.FromRow(row, kind, nil)
	if err != nil {
		return nil, "", cli.NewUsageError("prior", err.Error())
	}
	return p, id, nil
}

func (f *priorFlags) fromProblem(ctx context.Context, kind prior.Kind) (*prior.Prior, string, error) {
	if f.parameter == "" {
		return nil, "", cli.NewUsageError("parameter", "required with --problem")
	}
	prob, err := problem.Load(ctx, f.problem)
	if err != nil {
		return nil, "", err
	}
	if prob.Parameters == nil {
		return nil, "", cli.NewUsageError("problem", fmt.Sprintf("%s has no parameter table", f.problem))
	}
	rows, rowErr := table.ParameterRows(prob.Parameters)
	for _, r := range rows {
		if r.ID != f.parameter {
			continue
		}
		p, err := prior.FromRow(r.PriorRow(kind), kind, table.NominalBindings(rows))
		if err != nil {
			return nil, "", cli.NewFindingsError("prior", err)
		}
		return p, r.ID, nil
	}
	if rowErr != nil {
		return nil, "", cli.NewFindingsError("prior", fmt.Errorf("parameter %q not usable: %w", f.parameter, rowErr))
	}
	return nil, "", cli.NewUsageError("parameter", fmt.Sprintf("no parameter %q in %s", f.parameter, prob.Parameters.Name))
}
