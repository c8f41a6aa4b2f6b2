package optimize

import (
	"fmt"
	"strings"

	"outreach-backend/internal/jobs"
)

// transformFunc augments a section's text against a job posting. It returns
// the augmented text, a human-readable rationale naming the injected tokens,
// and whether anything was injected. Implementations must only append to the
// original text.
type transformFunc func(original string, job jobs.JobPosting) (text, rationale string, ok bool)

const (
	maxInjectedSkills = 3
	maxCoreSkills     = 2
)

func transformTable() map[SectionKind]transformFunc {
	return map[SectionKind]transformFunc{
		KindPersonalInfo: transformPersonalInfo,
		KindEducation:    transformEducation,
		KindSkills:       transformSkills,
		KindProjects:     transformProjects,
		KindResearch:     transformResearch,
	}
}

func transformPersonalInfo(original string, job jobs.JobPosting) (string, string, bool) {
	tag := strings.TrimSpace(job.CategoryTag)
	if tag == "" {
		return original, "", false
	}
	text := original + "\nSpecialization: " + tag + " specialist."
	rationale := fmt.Sprintf("Appended a specialization label derived from the job category %q so the profile leads with the posting's field.", tag)
	return text, rationale, true
}

func transformEducation(original string, job jobs.JobPosting) (string, string, bool) {
	tag := strings.TrimSpace(job.CategoryTag)
	if tag == "" {
		return original, "", false
	}
	text := original + "\nResearch direction: " + tag + "."
	rationale := fmt.Sprintf("Appended a research direction clause naming the job category %q to tie coursework to the posting.", tag)
	return text, rationale, true
}

func transformSkills(original string, job jobs.JobPosting) (string, string, bool) {
	missing := make([]string, 0, maxInjectedSkills)
	for _, skill := range job.Skills {
		if len(missing) == maxInjectedSkills {
			break
		}
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" || containsFold(original, trimmed) {
			continue
		}
		missing = append(missing, trimmed)
	}
	if len(missing) == 0 {
		return original, "", false
	}
	// The original stays byte-for-byte intact; trailing whitespace already
	// separates, otherwise a comma does.
	sep := ", "
	if strings.TrimRight(original, " \t\n") != original {
		sep = ""
	}
	text := original + sep + strings.Join(missing, ", ")
	rationale := fmt.Sprintf("Appended required skills not already listed: %s. Skills already present were left untouched to avoid duplicates.", strings.Join(missing, ", "))
	return text, rationale, true
}

func transformProjects(original string, job jobs.JobPosting) (string, string, bool) {
	core := make([]string, 0, maxCoreSkills)
	for _, skill := range job.Skills {
		if len(core) == maxCoreSkills {
			break
		}
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			core = append(core, trimmed)
		}
	}
	if len(core) == 0 {
		return original, "", false
	}
	text := original + "\nCore technology: " + strings.Join(core, ", ") + ". These projects match the " + job.Title + " role."
	rationale := fmt.Sprintf("Appended core technologies %s and an explicit match clause naming the %q title.", strings.Join(core, ", "), job.Title)
	return text, rationale, true
}

func transformResearch(original string, job jobs.JobPosting) (string, string, bool) {
	company := strings.TrimSpace(job.Company)
	if company == "" {
		return original, "", false
	}
	text := original + "\nThis research direction aligns with " + company + "'s focus areas."
	rationale := fmt.Sprintf("Appended a clause tying the research field to %s.", company)
	return text, rationale, true
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
