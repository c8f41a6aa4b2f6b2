package optimize

import (
	"context"
	"errors"
	"time"

	"outreach-backend/internal/jobs"
	"outreach-backend/internal/quota"
	"outreach-backend/internal/resumes"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/telemetry"
)

// Service runs the optimization pipeline: quota gate, load inputs, engine,
// persist the replacing result.
type Service struct {
	Engine  *Engine
	Repo    Repo
	Jobs    jobs.Repo
	Resumes resumes.Repo
	Quota   *quota.Service
}

// Run optimizes the user's résumé against the job and stores the result,
// superseding any previous run for the same (user, job) pair. The quota gate
// short-circuits before any input is loaded.
func (s *Service) Run(ctx context.Context, userID, jobID string) (Result, error) {
	if s.Quota != nil {
		if err := s.Quota.Authorize(ctx, userID, quota.ActionOptimize); err != nil {
			return Result{}, err
		}
	}

	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Result{}, ErrJobNotFound
		}
		return Result{}, err
	}

	sections, err := s.Resumes.GetSections(ctx, userID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return Result{}, ErrNoResume
		}
		return Result{}, err
	}

	start := time.Now()
	result, err := s.Engine.Optimize(sections, job)
	if err != nil {
		return Result{}, err
	}
	metrics.ObserveOptimizeDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)

	if err := s.Repo.Save(ctx, userID, result); err != nil {
		return Result{}, err
	}
	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, userID, quota.ActionOptimize); err != nil {
			return Result{}, err
		}
	}
	metrics.IncOptimizeRuns()

	telemetry.Info("optimize.complete", map[string]any{
		"user_id":     userID,
		"job_id":      jobID,
		"match_score": result.MatchScore,
		"sections":    len(result.Sections),
	})
	return result, nil
}

// Get returns the current result for the (user, job) pair.
func (s *Service) Get(ctx context.Context, userID, jobID string) (Result, error) {
	return s.Repo.Get(ctx, userID, jobID)
}
