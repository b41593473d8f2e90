package samplestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"petab-hq/petab/pkg/prior"
)

// ErrNotFound is returned when a batch ID is unknown.
var ErrNotFound = errors.New("sample batch not found")

// Batch is a set of samples drawn from one prior.
type Batch struct {
	ID          string    `json:"id"`
	ParameterID string    `json:"parameter_id"`
	Prior       string    `json:"prior"`
	Scaled      bool      `json:"scaled"` // values are on the parameter scale
	Seed        uint64    `json:"seed"`
	CreatedAt   time.Time `json:"created_at"`
	Count       int       `json:"count"`
	Values      []float64 `json:"values,omitempty"`
}

// NewBatch creates an unsaved batch from samples.
func NewBatch(parameterID string, p *prior.Prior, samples []prior.Sample, seed uint64) *Batch {
	b := &Batch{
		ParameterID: parameterID,
		Prior:       p.String(),
		Seed:        seed,
		Values:      prior.Values(samples),
	}
	if len(samples) > 0 {
		b.Scaled = samples[0].Scaled
	}
	b.Count = len(b.Values)
	return b
}

// Store persists sample batches. Implementations are safe for concurrent
// use.
type Store interface {
	// SaveBatch stores b, assigning ID and CreatedAt if unset.
	SaveBatch(ctx context.Context, b *Batch) error
	// Batch returns the batch with its values.
	Batch(ctx context.Context, id string) (*Batch, error)
	// ListBatches returns batches without values, oldest first. An empty
	// parameterID lists all batches.
	ListBatches(ctx context.Context, parameterID string) ([]*Batch, error)
	// DeleteBatch removes a batch.
	DeleteBatch(ctx context.Context, id string) error
	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error
	Close() error
}

// prepare validates b and fills in defaults.
func prepare(b *Batch) error {
	if b == nil {
		return fmt.Errorf("batch cannot be nil")
	}
	if b.ParameterID == "" {
		return fmt.Errorf("parameter ID cannot be empty")
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.Count = len(b.Values)
	return nil
}

// Open creates a store for backend "memory" or "sqlite". path is ignored
// for the memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown sample store backend %q (want memory or sqlite)", backend)
}
