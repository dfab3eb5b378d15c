package judge

import "errors"

// Sentinel kinds for judging failures.
var (
	// ErrUnavailable marks a judge dependency failure. The affected turn
	// stays unscored and may be re-queued for judging later.
	ErrUnavailable = errors.New("judge unavailable")
)
