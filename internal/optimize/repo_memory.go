package optimize

import (
	"context"
	"sync"
)

type resultKey struct {
	userID string
	jobID  string
}

// MemoryRepo stores optimization results in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[resultKey]Result
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[resultKey]Result)}
}

// Save replaces the result for the (user, job) pair.
func (r *MemoryRepo) Save(ctx context.Context, userID string, result Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[resultKey{userID: userID, jobID: result.JobID}] = result
	return nil
}

// Get returns the current result for the (user, job) pair.
func (r *MemoryRepo) Get(ctx context.Context, userID, jobID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.data[resultKey{userID: userID, jobID: jobID}]
	if !ok {
		return Result{}, ErrNotFound
	}
	return result, nil
}
