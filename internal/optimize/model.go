package optimize

import "time"

// OptimizedSection is a résumé section after transformation against a job
// posting. OptimizedText always contains OriginalText as a substring; the
// engine only appends, never rewrites user-authored content.
type OptimizedSection struct {
	Title         string `json:"title"`
	OriginalText  string `json:"originalText"`
	OptimizedText string `json:"optimizedText"`
	Rationale     string `json:"rationale"`
	IsOptimized   bool   `json:"isOptimized"`
}

// Result is one optimization run over a (résumé, job) pair. Re-running
// replaces the previous result wholesale.
type Result struct {
	JobID      string             `json:"jobId"`
	Sections   []OptimizedSection `json:"sections"`
	MatchScore int                `json:"matchScore"`
	CreatedAt  time.Time          `json:"createdAt"`
}
