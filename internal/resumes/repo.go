package resumes

import "context"

// Repo defines persistence operations for résumé sections.
type Repo interface {
	GetSections(ctx context.Context, userID string) ([]Section, error)
	ReplaceSections(ctx context.Context, userID string, sections []Section) error
}
