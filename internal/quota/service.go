package quota

import (
	"context"
	"fmt"
)

type store interface {
	EnsurePeriod(ctx context.Context, userID string, action Action) (Usage, error)
	Consume(ctx context.Context, userID string, action Action, n int) (Usage, error)
	Snapshot(ctx context.Context, userID string) ([]Usage, error)
	Reset(ctx context.Context, userID string) error
}

// Service gates pipeline actions against per-period usage limits.
type Service struct {
	store store
}

// NewService constructs a Service with in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Check returns the quota decision for one more use of the action. It has no
// side effects; callers must short-circuit before doing any work when the
// decision is a denial.
func (s *Service) Check(ctx context.Context, userID string, action Action) (Decision, error) {
	u, err := s.store.EnsurePeriod(ctx, userID, action)
	if err != nil {
		return Decision{}, err
	}
	dec := Decision{
		Allowed:  u.Quota.Allows(u.Used),
		Used:     u.Used,
		Quota:    u.Quota,
		ResetsAt: u.ResetsAt,
	}
	if !dec.Allowed {
		limit, _ := u.Quota.Limit()
		dec.Reason = fmt.Sprintf("%s limit of %d reached for this period", action, limit)
	}
	return dec, nil
}

// Authorize is Check folded into an error: it returns nil when allowed and an
// ErrDenied-wrapped error carrying the reason when not.
func (s *Service) Authorize(ctx context.Context, userID string, action Action) error {
	dec, err := s.Check(ctx, userID, action)
	if err != nil {
		return err
	}
	if !dec.Allowed {
		return fmt.Errorf("%w: %s", ErrDenied, dec.Reason)
	}
	return nil
}

// Consume records one use of the action.
func (s *Service) Consume(ctx context.Context, userID string, action Action) (Usage, error) {
	return s.store.Consume(ctx, userID, action, 1)
}

// Snapshot returns usage for every gated action.
func (s *Service) Snapshot(ctx context.Context, userID string) ([]Usage, error) {
	return s.store.Snapshot(ctx, userID)
}

// Reset zeroes usage for all actions and restarts the window.
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.store.Reset(ctx, userID)
}
