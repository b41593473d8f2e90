package lint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"petab-hq/petab/pkg/formula"
	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/problem"
	"petab-hq/petab/pkg/table"
	"petab-hq/petab/pkg/telemetry/tracing"
)

// PriorRecorder receives one call per prior the linter builds. It is
// implemented by metrics.PriorMetrics.
type PriorRecorder interface {
	RecordPrior(family string, ok bool)
}

// Linter checks PEtab problems. It is safe for concurrent use once
// configured.
type Linter struct {
	pipeline     *formula.Pipeline
	workers      int
	logger       *slog.Logger
	modelSymbols map[string]symbols.Kind
	priors       PriorRecorder
}

// NewLinter creates a linter with the default formula pipeline.
func NewLinter() *Linter {
	return &Linter{
		pipeline: formula.NewPipeline(),
		logger:   slog.Default(),
	}
}

// WithPipeline sets the formula pipeline.
func (l *Linter) WithPipeline(p *formula.Pipeline) *Linter {
	l.pipeline = p
	return l
}

// WithWorkers bounds the number of formulas compiled concurrently.
// Zero means GOMAXPROCS.
func (l *Linter) WithWorkers(n int) *Linter {
	l.workers = n
	return l
}

// WithLogger sets the logger.
func (l *Linter) WithLogger(logger *slog.Logger) *Linter {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithModelSymbols declares the entities defined by the model. Once set,
// identifiers not defined by the model or the tables are errors.
func (l *Linter) WithModelSymbols(model map[string]symbols.Kind) *Linter {
	l.modelSymbols = model
	if l.modelSymbols == nil {
		l.modelSymbols = map[string]symbols.Kind{}
	}
	return l
}

// WithPriorRecorder sets the prior metrics recorder.
func (l *Linter) WithPriorRecorder(r PriorRecorder) *Linter {
	l.priors = r
	return l
}

// Lint checks the problem. The returned error is only set when ctx is
// cancelled; problems with the tables are findings in the report.
func (l *Linter) Lint(ctx context.Context, p *problem.Problem) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Problem:   p.Path,
		StartedAt: time.Now(),
	}
	logger := l.logger.With("run_id", report.RunID, "problem", p.Path)
	logger.Debug("lint started")

	ctx, span := tracing.Start(ctx, "lint.Lint", tracing.RunID(report.RunID), tracing.Problem(p.Path))
	defer span.End()

	c := newChecker(l, report)
	if p.Parameters != nil {
		c.loadParameters(p.Parameters)
	}
	for _, t := range p.Conditions {
		c.loadConditions(t)
	}
	for _, t := range p.Observables {
		c.loadObservables(t)
	}
	for _, t := range p.Measurements {
		c.loadMeasurements(t)
	}
	c.priorChecks()

	if err := c.compile(ctx); err != nil {
		tracing.SetStatus(span, err)
		return nil, fmt.Errorf("lint cancelled: %w", err)
	}
	c.measurementChecks()

	report.Sort()
	report.Duration = time.Since(report.StartedAt)
	tracing.SetLintAttributes(span, report.ErrorCount(), report.WarningCount())
	logger.Info("lint finished",
		"errors", report.ErrorCount(),
		"warnings", report.WarningCount(),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// LintTables checks the tables of a problem that was not loaded from a
// YAML file. Any table may be nil.
func (l *Linter) LintTables(ctx context.Context, parameters *table.Table, conditions, observables, measurements []*table.Table) (*Report, error) {
	return l.Lint(ctx, &problem.Problem{
		Parameters:   parameters,
		Conditions:   conditions,
		Observables:  observables,
		Measurements: measurements,
	})
}
