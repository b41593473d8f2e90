package formula

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"petab-hq/petab/pkg/formula/symbols"
	"petab-hq/petab/pkg/telemetry/tracing"
)

// Job is one formula to validate. Table overrides the batch-wide table
// when set.
type Job struct {
	ID    string
	Text  string
	Table *symbols.Table
}

// ValidateAll compiles all jobs on at most workers goroutines (GOMAXPROCS
// if workers <= 0). Results are in input order. Formula problems are
// reported in each Formula's diagnostics; the returned error is only set
// when ctx is cancelled.
func (p *Pipeline) ValidateAll(ctx context.Context, jobs []Job, table *symbols.Table, workers int) ([]*Formula, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, span := tracing.Start(ctx, "formula.ValidateAll")
	defer span.End()
	tracing.SetFormulaBatchAttributes(span, len(jobs), workers)

	results := make([]*Formula, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := table
			if job.Table != nil {
				t = job.Table
			}
			results[i] = p.Compile(job.Text, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ValidateAll runs the default pipeline's ValidateAll.
func ValidateAll(ctx context.Context, jobs []Job, table *symbols.Table, workers int) ([]*Formula, error) {
	return defaultPipeline.ValidateAll(ctx, jobs, table, workers)
}
