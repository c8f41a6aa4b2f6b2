package resumes

import (
	"context"
	"sync"
)

// MemoryRepo stores résumé sections in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byUser map[string][]Section
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string][]Section)}
}

// GetSections returns the ordered sections for a user.
func (r *MemoryRepo) GetSections(ctx context.Context, userID string) ([]Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sections, ok := r.byUser[userID]
	if !ok || len(sections) == 0 {
		return nil, ErrNotFound
	}
	out := make([]Section, len(sections))
	copy(out, sections)
	return out, nil
}

// ReplaceSections overwrites the user's sections, preserving the given order.
func (r *MemoryRepo) ReplaceSections(ctx context.Context, userID string, sections []Section) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]Section, len(sections))
	copy(stored, sections)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = stored
	return nil
}
