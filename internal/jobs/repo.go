package jobs

import "context"

// Repo defines persistence operations for job postings.
type Repo interface {
	Create(ctx context.Context, job JobPosting) error
	GetByID(ctx context.Context, jobID string) (JobPosting, error)
	List(ctx context.Context, limit, offset int) ([]JobPosting, error)
}
