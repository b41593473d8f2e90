package samplestore

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore implements Store with an in-memory map.
type MemoryStore struct {
	batches map[string]*Batch
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches: make(map[string]*Batch),
	}
}

// SaveBatch stores a copy of b.
func (s *MemoryStore) SaveBatch(ctx context.Context, b *Batch) error {
	if err := prepare(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	batchCopy := *b
	batchCopy.Values = slices.Clone(b.Values)
	s.batches[b.ID] = &batchCopy
	return nil
}

// Batch returns a copy of the stored batch.
func (s *MemoryStore) Batch(ctx context.Context, id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	batchCopy := *b
	batchCopy.Values = slices.Clone(b.Values)
	return &batchCopy, nil
}

// ListBatches returns batch summaries ordered by creation time.
func (s *MemoryStore) ListBatches(ctx context.Context, parameterID string) ([]*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Batch
	for _, b := range s.batches {
		if parameterID != "" && b.ParameterID != parameterID {
			continue
		}
		summary := *b
		summary.Values = nil
		out = append(out, &summary)
	}
	slices.SortFunc(out, func(a, b *Batch) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteBatch removes a batch.
func (s *MemoryStore) DeleteBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[id]; !ok {
		return ErrNotFound
	}
	delete(s.batches, id)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ Store = (*MemoryStore)(nil)
