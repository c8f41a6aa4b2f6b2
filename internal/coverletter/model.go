package coverletter

import "time"

// CoverLetter is a synthesized letter for one job. It is never mutated after
// creation, only regenerated.
type CoverLetter struct {
	Text               string    `json:"text"`
	GeneratedFromJobID string    `json:"generatedFromJobId"`
	GeneratedAt        time.Time `json:"generatedAt"`
}
