package coverletter

import (
	"fmt"
	"strings"
	"time"

	"outreach-backend/internal/jobs"
	"outreach-backend/internal/optimize"
)

const maxMatchingPoints = 3

var nameSeparators = []string{"\n", ",", "|", ";", "·"}

// Synthesize builds a fixed-structure cover letter from an optimization
// result and the job attributes. It is a pure function of its inputs and the
// supplied timestamp: identical inputs and clock yield an identical letter.
func Synthesize(result optimize.Result, job jobs.JobPosting, now time.Time) (CoverLetter, error) {
	name := nameToken(result.Sections)
	if name == "" {
		return CoverLetter{}, ErrMissingIdentity
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s Hiring Team,\n\n", job.Company)
	fmt.Fprintf(&b, "My name is %s and I am applying for the %s position.\n\n", name, job.Title)

	points := matchingPoints(result, job)
	for _, point := range points {
		fmt.Fprintf(&b, "- %s\n", point)
	}
	if len(points) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("I would welcome the chance to discuss how my background fits your team.\n\n")
	fmt.Fprintf(&b, "Sincerely,\n%s\n%s\n", name, now.UTC().Format("2 January 2006"))

	return CoverLetter{
		Text:               b.String(),
		GeneratedFromJobID: job.ID,
		GeneratedAt:        now.UTC(),
	}, nil
}

// nameToken extracts the applicant name from the Personal Info section: the
// first segment before any separator.
func nameToken(sections []optimize.OptimizedSection) string {
	for _, section := range sections {
		if optimize.ParseSectionKind(section.Title) != optimize.KindPersonalInfo {
			continue
		}
		segment := section.OriginalText
		for _, sep := range nameSeparators {
			if idx := strings.Index(segment, sep); idx >= 0 {
				segment = segment[:idx]
			}
		}
		return strings.TrimSpace(segment)
	}
	return ""
}

// matchingPoints builds up to three explicit points, each citing one
// optimized section and the job attribute it matches.
func matchingPoints(result optimize.Result, job jobs.JobPosting) []string {
	var points []string
	byKind := make(map[optimize.SectionKind]optimize.OptimizedSection, len(result.Sections))
	for _, section := range result.Sections {
		kind := optimize.ParseSectionKind(section.Title)
		if _, ok := byKind[kind]; !ok {
			byKind[kind] = section
		}
	}

	if section, ok := byKind[optimize.KindEducation]; ok && section.IsOptimized && strings.TrimSpace(job.CategoryTag) != "" {
		points = append(points, fmt.Sprintf("My education background aligns with your %s focus.", strings.TrimSpace(job.CategoryTag)))
	}

	if section, ok := byKind[optimize.KindSkills]; ok {
		if shared := skillsIn(section.OptimizedText, job.Skills, maxMatchingPoints); len(shared) > 0 {
			points = append(points, fmt.Sprintf("I bring hands-on experience with %s, which your posting calls for.", strings.Join(shared, ", ")))
		}
	}

	if section, ok := byKind[optimize.KindProjects]; ok {
		coreLimit := 2
		if subset := skillsIn(section.OptimizedText, job.Skills, coreLimit); len(subset) > 0 {
			points = append(points, fmt.Sprintf("My projects are built on %s, the core stack of the %s role.", strings.Join(subset, ", "), job.Title))
		}
	}

	if len(points) > maxMatchingPoints {
		points = points[:maxMatchingPoints]
	}
	return points
}

// skillsIn returns up to limit job skills present in the text, preserving
// the posting's skill order.
func skillsIn(text string, skills []string, limit int) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, skill := range skills {
		if len(out) == limit {
			break
		}
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trimmed)) {
			out = append(out, trimmed)
		}
	}
	return out
}
