package quota

import (
	"context"
	"sync"
	"time"
)

type usageKey struct {
	userID string
	action Action
}

type memoryStore struct {
	mu   sync.Mutex
	data map[usageKey]Usage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[usageKey]Usage)}
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, userID string, action Action) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, action), nil
}

func (s *memoryStore) ensureLocked(userID string, action Action) Usage {
	now := time.Now().UTC()
	key := usageKey{userID: userID, action: action}
	u, ok := s.data[key]
	if !ok {
		u = defaultUsage(action)
	}
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(defaultPeriod)
	}
	s.data[key] = u
	return u
}

func (s *memoryStore) Consume(ctx context.Context, userID string, action Action, n int) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, action)
	if n <= 0 {
		return u, nil
	}
	if limit, capped := u.Quota.Limit(); capped && u.Used+n > limit {
		return Usage{}, ErrDenied
	}
	u.Used += n
	s.data[usageKey{userID: userID, action: action}] = u
	return u, nil
}

func (s *memoryStore) Snapshot(ctx context.Context, userID string) ([]Usage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Usage, 0, len(Actions))
	for _, action := range Actions {
		out = append(out, s.ensureLocked(userID, action))
	}
	return out, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, action := range Actions {
		u := defaultUsage(action)
		u.ResetsAt = now.Add(defaultPeriod)
		s.data[usageKey{userID: userID, action: action}] = u
	}
	return nil
}
