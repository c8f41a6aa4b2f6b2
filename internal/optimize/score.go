package optimize

import (
	"math"
	"strings"

	"outreach-backend/internal/jobs"
)

// Score weights. Skill coverage dominates because it is the signal recruiters
// filter on; section share rewards a résumé whose structure the rule set
// could actually work with.
const (
	skillWeight   = 70.0
	sectionWeight = 30.0
)

// matchScore computes the deterministic match score in [0,100]:
//
//	score = round(70*coverage + 30*share)
//
// where coverage is the fraction of job skills present (case-insensitive
// substring) across all post-optimization section texts, and share is the
// fraction of sections the engine optimized. When the posting lists no
// skills, coverage falls back to whether the category tag appears in the
// optimized text. The same inputs always produce the same score.
func matchScore(sections []OptimizedSection, job jobs.JobPosting) int {
	if len(sections) == 0 {
		return 0
	}

	var combined strings.Builder
	optimized := 0
	for _, s := range sections {
		combined.WriteString(s.OptimizedText)
		combined.WriteString("\n")
		if s.IsOptimized {
			optimized++
		}
	}
	corpus := strings.ToLower(combined.String())

	coverage := 0.0
	if len(job.Skills) > 0 {
		hits := 0
		for _, skill := range job.Skills {
			trimmed := strings.TrimSpace(skill)
			if trimmed != "" && strings.Contains(corpus, strings.ToLower(trimmed)) {
				hits++
			}
		}
		coverage = float64(hits) / float64(len(job.Skills))
	} else if tag := strings.TrimSpace(job.CategoryTag); tag != "" {
		if strings.Contains(corpus, strings.ToLower(tag)) {
			coverage = 1.0
		}
	}

	share := float64(optimized) / float64(len(sections))
	score := int(math.Round(skillWeight*coverage + sectionWeight*share))
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
