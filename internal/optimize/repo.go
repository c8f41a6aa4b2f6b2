package optimize

import "context"

// Repo persists the single optimization result per (user, job) pair.
type Repo interface {
	Save(ctx context.Context, userID string, result Result) error
	Get(ctx context.Context, userID, jobID string) (Result, error)
}
