package recordings

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only repository. It backs the sink
// when no Postgres is configured and is what the tests use.

type MemoryRepo struct {
	mu   sync.Mutex
	recs []Recording
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, rec Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, limit int) ([]Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recording, 0, limit)
	for i := len(r.recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.recs[i])
	}
	return out, nil
}
