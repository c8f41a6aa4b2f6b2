package outreach

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation error")
	ErrDuplicateInFlight = errors.New("another message for this job is in flight")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotDraft          = errors.New("message already left draft")
)

const (
	// FailureReasonTimeout marks a message that sat in Sending past the
	// configured threshold.
	FailureReasonTimeout = "timeout"
)
