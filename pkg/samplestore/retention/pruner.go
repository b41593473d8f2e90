package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"petab-hq/petab/pkg/config"
	"petab-hq/petab/pkg/samplestore"
)

// Pruner enforces retention limits on a sample store.
type Pruner struct {
	store  samplestore.Store
	config config.RetentionConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPruner creates a pruner for store.
func NewPruner(store samplestore.Store, cfg config.RetentionConfig) *Pruner {
	return &Pruner{
		store:  store,
		config: cfg,
		logger: slog.Default().With("component", "samplestore.retention"),
		now:    time.Now,
	}
}

// WithLogger sets the logger.
func (p *Pruner) WithLogger(logger *slog.Logger) *Pruner {
	if logger != nil {
		p.logger = logger.With("component", "samplestore.retention")
	}
	return p
}

// Prune deletes batches created before now minus MaxAge, then the oldest
// batches beyond MaxBatches. It returns the number of batches deleted.
// Batches deleted concurrently by another process are not counted.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if !p.config.Enabled() {
		return 0, nil
	}
	batches, err := p.store.ListBatches(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list batches: %w", err)
	}

	// Oldest first, so expired batches form a prefix.
	expired := 0
	if p.config.MaxAge > 0 {
		cutoff := p.now().Add(-p.config.MaxAge)
		for expired < len(batches) && batches[expired].CreatedAt.Before(cutoff) {
			expired++
		}
	}
	surplus := 0
	if kept := len(batches) - expired; p.config.MaxBatches > 0 && kept > p.config.MaxBatches {
		surplus = kept - p.config.MaxBatches
	}

	deleted := 0
	for _, b := range batches[:expired+surplus] {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		err := p.store.DeleteBatch(ctx, b.ID)
		switch {
		case errors.Is(err, samplestore.ErrNotFound):
			continue
		case err != nil:
			return deleted, fmt.Errorf("failed to delete batch %s: %w", b.ID, err)
		}
		deleted++
		p.logger.Debug("batch pruned", "batch", b.ID, "parameter", b.ParameterID, "created_at", b.CreatedAt)
	}

	if deleted > 0 {
		p.logger.Info("sample batches pruned",
			"deleted_count", deleted,
			"expired", expired,
			"surplus", surplus,
			"max_age", p.config.MaxAge,
			"max_batches", p.config.MaxBatches,
		)
	}
	return deleted, nil
}
