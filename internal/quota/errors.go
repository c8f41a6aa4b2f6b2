package quota

import "errors"

// ErrDenied indicates the user exceeded the quota for an action.
var ErrDenied = errors.New("quota denied")
