package coverletter

import (
	"context"
	"errors"
	"time"

	"outreach-backend/internal/jobs"
	"outreach-backend/internal/optimize"
	"outreach-backend/internal/quota"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/telemetry"
)

// Service synthesizes cover letters from stored optimization results.
type Service struct {
	Results optimize.Repo
	Jobs    jobs.Repo
	Quota   *quota.Service
	Clock   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Generate builds a letter for the user's current optimization result. The
// quota gate short-circuits before any input is loaded.
func (s *Service) Generate(ctx context.Context, userID, jobID string) (CoverLetter, error) {
	if s.Quota != nil {
		if err := s.Quota.Authorize(ctx, userID, quota.ActionGenerateLetter); err != nil {
			return CoverLetter{}, err
		}
	}

	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return CoverLetter{}, ErrJobNotFound
		}
		return CoverLetter{}, err
	}

	result, err := s.Results.Get(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, optimize.ErrNotFound) {
			return CoverLetter{}, ErrNoOptimization
		}
		return CoverLetter{}, err
	}

	letter, err := Synthesize(result, job, s.now())
	if err != nil {
		return CoverLetter{}, err
	}

	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, userID, quota.ActionGenerateLetter); err != nil {
			return CoverLetter{}, err
		}
	}
	metrics.IncCoverLetters()

	telemetry.Info("coverletter.generated", map[string]any{
		"user_id": userID,
		"job_id":  jobID,
		"chars":   len(letter.Text),
	})
	return letter, nil
}
