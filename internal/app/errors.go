package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrVerdictPending gates the COMPLETED transition: the interview has
	// questions but no stored result yet.
	ErrVerdictPending = errors.New("verdict pending")

	// ErrResultRequired gates terminal application moves once the
	// application has a linked interview.
	ErrResultRequired = errors.New("interview result required")

	// ErrQueueFull means the answer could not be enqueued for judging.
	ErrQueueFull = errors.New("judging queue full")

	// ErrNotStarted means the service was used before Start.
	ErrNotStarted = errors.New("service not started")
)
