package jobs

import "time"

// JobPosting is a target job listing. Immutable once fetched.
type JobPosting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Skills      []string  `json:"skills"`
	CategoryTag string    `json:"categoryTag"`
	CreatedAt   time.Time `json:"createdAt"`
}
