package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"petab-hq/petab/pkg/cli"
	"petab-hq/petab/pkg/formula"
	"petab-hq/petab/pkg/formula/ast"
	formulaErrors "petab-hq/petab/pkg/formula/errors"
	"petab-hq/petab/pkg/formula/eval"
	"petab-hq/petab/pkg/formula/parser"
	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/formula/validator"
)

var formulaFlags struct {
	set    []string
	strict bool
	format string
}

var evalCmd = &cobra.Command{
	Use:   "eval FORMULA",
	Short: "Evaluate a formula",
	Long: `Evaluate a PEtab math formula with the given identifier values.

Every identifier in the formula must be bound with --set. Syntax and
semantic errors are printed with the offending part of the formula marked.

Examples:
  petab eval "2^3 + ln(exp(1))"
  petab eval "k1 * exp(-k2 * t)" --set k1=2 --set k2=0.5 --set t=1
  petab eval "piecewise(1, x > 0, -1)" --set x=-3 --format json`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEval(current, cmd.OutOrStdout(), args[0])
	},
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify FORMULA",
	Short: "Simplify a formula under partial bindings",
	Long: `Substitute the --set values into a formula and fold constants.

Unbound identifiers are kept. The result is printed as a formula.

Examples:
  petab simplify "a * 1 + 0 * b"
  petab simplify "if x > 0 then a else b" --set x=1`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimplify(current, cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(evalCmd, simplifyCmd)

	for _, c := range []*cobra.Command{evalCmd, simplifyCmd} {
		c.Flags().StringArrayVarP(&formulaFlags.set, "set", "s", nil, "bind an identifier, name=value (repeatable)")
		c.Flags().BoolVar(&formulaFlags.strict, "strict", false, "treat formula warnings as errors")
		c.Flags().StringVar(&formulaFlags.format, "format", "text", "output format: text, json")
	}
}

// pipeline builds the formula pipeline from the lint configuration,
// recording into the app's metrics collector.
func (a *app) pipeline(strict bool) (*formula.Pipeline, *formula.Cache) {
	cache := formula.NewCache(a.cfg.Lint.CacheSize)
	p := formula.NewPipeline().
		WithParser(parser.NewParser().
			WithMaxDepth(a.cfg.Lint.MaxDepth).
			WithMaxLength(a.cfg.Lint.MaxLength)).
		WithValidator(validator.NewValidator().WithStrictMode(strict)).
		WithCache(cache).
		WithRecorder(a.collector)
	return p, cache
}

// formulaResult is the output of eval and simplify.
type formulaResult struct {
	Formula    string        `json:"formula"`
	Value      *float64      `json:"value,omitempty"`
	Simplified string        `json:"simplified,omitempty"`
	Symbols    []string      `json:"free_symbols,omitempty"`
	Bindings   eval.Bindings `json:"bindings,omitempty"`
}

func (r formulaResult) WriteText(w io.Writer) error {
	var err error
	if r.Value != nil {
		_, err = fmt.Fprintln(w, strconv.FormatFloat(*r.Value, 'g', -1, 64))
	} else {
		_, err = fmt.Fprintln(w, r.Simplified)
	}
	return err
}

// diagnosticsError prints diagnostics with their source context and returns
// the exit error.
func diagnosticsError(w io.Writer, command, text string, diags *formulaErrors.DiagnosticList) error {
	fmt.Fprint(w, formulaErrors.WithSource(diags, text))
	return cli.NewFindingsError(command, diags.ToError())
}

func bindingTable(bindings eval.Bindings, extra ...string) *symbols.Table {
	kinds := make(map[string]symbols.Kind, len(bindings)+len(extra))
	for name := range bindings {
		kinds[name] = symbols.Parameter
	}
	for _, name := range extra {
		kinds[name] = symbols.Parameter
	}
	return symbols.NewTable().With(kinds)
}

func runEval(a *app, w io.Writer, text string) error {
	format, err := cli.ParseFormat(formulaFlags.format)
	if err != nil {
		return err
	}
	bindings, err := parseBindings(formulaFlags.set)
	if err != nil {
		return err
	}

	pipeline, _ := a.pipeline(formulaFlags.strict)
	f := pipeline.Compile(text, bindingTable(bindings))
	if !f.OK() {
		return diagnosticsError(w, "eval", text, f.Diagnostics)
	}
	for _, d := range f.Diagnostics.Warnings() {
		a.logger.Warn("formula warning", "formula", text, "warning", d.Error())
	}

	v, err := f.Evaluate(bindings)
	if err != nil {
		var evalErr *eval.Error
		if errors.As(err, &evalErr) {
			a.collector.RecordEvalError(string(evalErr.Kind))
			fmt.Fprint(w, formulaErrors.ExtractContext(text, &formulaErrors.Diagnostic{Span: evalErr.Span}))
		}
		return cli.NewFindingsError("eval", err)
	}
	a.logger.Debug("formula evaluated", "formula", text, "value", v)
	return cli.NewFormatter(format).FormatTo(w, formulaResult{Formula: text, Value: &v, Bindings: bindings})
}

func runSimplify(a *app, w io.Writer, text string) error {
	format, err := cli.ParseFormat(formulaFlags.format)
	if err != nil {
		return err
	}
	bindings, err := parseBindings(formulaFlags.set)
	if err != nil {
		return err
	}

	pipeline, _ := a.pipeline(formulaFlags.strict)
	res := pipeline.Parse(text)
	if !res.OK() {
		return diagnosticsError(w, "simplify", text, res.Diagnostics)
	}
	// Unbound identifiers stay symbolic, so every free symbol is declared.
	f := pipeline.Compile(text, bindingTable(bindings, eval.FreeSymbols(res.Root)...))
	if !f.OK() {
		return diagnosticsError(w, "simplify", text, f.Diagnostics)
	}

	simplified := eval.Simplify(f.Root, bindings)
	result := formulaResult{
		Formula:    text,
		Simplified: ast.Format(simplified),
		Symbols:    eval.FreeSymbols(simplified),
		Bindings:   bindings,
	}
	if v, ok := eval.ConstantValue(simplified); ok {
		result.Value = &v
	}
	a.logger.Debug("formula simplified", "formula", text, "result", result.Simplified,
		"bound", slices.Sorted(maps.Keys(bindings)))
	return cli.NewFormatter(format).FormatTo(w, result)
}
