package optimize

import "errors"

var (
	// ErrInsufficientJobData means the posting has neither skills nor a
	// category tag, leaving nothing to optimize against.
	ErrInsufficientJobData = errors.New("insufficient job data")
	ErrNotFound            = errors.New("not found")
	ErrNoResume            = errors.New("no resume on file")
	ErrJobNotFound         = errors.New("job not found")
)
