package narrative

import "errors"

// Sentinel kinds for narrative failures.
var (
	// ErrUnavailable marks a narrator dependency failure. Aggregation
	// absorbs it and commits the result with empty narrative fields.
	ErrUnavailable = errors.New("narrative generator unavailable")
)
