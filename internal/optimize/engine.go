package optimize

import (
	"strings"
	"time"

	"outreach-backend/internal/jobs"
	"outreach-backend/internal/resumes"
)

// Engine transforms résumé sections against a job posting. It is pure: no
// hidden state, no randomness, and safe for concurrent use across
// (user, job) pairs.
type Engine struct {
	transforms map[SectionKind]transformFunc
}

// NewEngine constructs an Engine with the full rule table.
func NewEngine() *Engine {
	return &Engine{transforms: transformTable()}
}

// Optimize runs every section through its kind's transform and computes the
// match score. It fails with ErrInsufficientJobData when the posting carries
// neither skills nor a category tag.
func (e *Engine) Optimize(sections []resumes.Section, job jobs.JobPosting) (Result, error) {
	if len(job.Skills) == 0 && strings.TrimSpace(job.CategoryTag) == "" {
		return Result{}, ErrInsufficientJobData
	}

	out := make([]OptimizedSection, 0, len(sections))
	for _, section := range sections {
		optimized := OptimizedSection{
			Title:         section.Title,
			OriginalText:  section.OriginalText,
			OptimizedText: section.OriginalText,
		}
		if transform, ok := e.transforms[ParseSectionKind(section.Title)]; ok {
			if text, rationale, applied := transform(section.OriginalText, job); applied {
				optimized.OptimizedText = text
				optimized.Rationale = rationale
				optimized.IsOptimized = true
			}
		}
		out = append(out, optimized)
	}

	return Result{
		JobID:      job.ID,
		Sections:   out,
		MatchScore: matchScore(out, job),
		CreatedAt:  time.Now().UTC(),
	}, nil
}
