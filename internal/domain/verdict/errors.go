package verdict

import "errors"

// Sentinel kinds for aggregation integrity failures.
var (
	// ErrInconsistent signals more scored evaluations than asked questions,
	// i.e. an evaluation was recorded without a corresponding chat turn.
	ErrInconsistent = errors.New("evaluated count exceeds total questions")
)
