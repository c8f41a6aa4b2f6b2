package optimize

import "strings"

// SectionKind identifies which transform rule applies to a résumé section.
type SectionKind int

const (
	KindUnknown SectionKind = iota
	KindPersonalInfo
	KindEducation
	KindSkills
	KindProjects
	KindResearch
)

// String returns the canonical section title for the kind.
func (k SectionKind) String() string {
	switch k {
	case KindPersonalInfo:
		return "Personal Info"
	case KindEducation:
		return "Education"
	case KindSkills:
		return "Skills"
	case KindProjects:
		return "Projects"
	case KindResearch:
		return "Research"
	default:
		return "Unknown"
	}
}

var kindAliases = map[string]SectionKind{
	"personal info":        KindPersonalInfo,
	"personal information": KindPersonalInfo,
	"contact":              KindPersonalInfo,
	"education":            KindEducation,
	"skills":               KindSkills,
	"technical skills":     KindSkills,
	"projects":             KindProjects,
	"research":             KindResearch,
	"publications":         KindResearch,
}

// ParseSectionKind maps a section title to its kind. Unrecognized titles map
// to KindUnknown and pass through the engine unmodified.
func ParseSectionKind(title string) SectionKind {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), ":")))
	if kind, ok := kindAliases[normalized]; ok {
		return kind
	}
	return KindUnknown
}
