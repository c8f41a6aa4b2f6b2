package jobs

import "errors"

var ErrNotFound = errors.New("not found")
