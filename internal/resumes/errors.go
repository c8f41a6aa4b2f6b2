package resumes

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyResume  = errors.New("resume has no sections")
	ErrUnsupported  = errors.New("unsupported resume format")
	ErrExtractEmpty = errors.New("no text extracted")
)
