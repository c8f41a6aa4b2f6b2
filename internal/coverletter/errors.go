package coverletter

import "errors"

var (
	// ErrMissingIdentity means the Personal Info section yields no name token.
	ErrMissingIdentity = errors.New("missing identity")
	// ErrNoOptimization means no optimization result exists for the job yet.
	ErrNoOptimization = errors.New("no optimization result")
	ErrJobNotFound    = errors.New("job not found")
)
