package gemini

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrBadResponse means the model replied with something the engine
	// could not parse into an evaluation.
	ErrBadResponse = errors.New("unparseable model response")
)
