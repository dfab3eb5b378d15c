package lifecycle

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrIllegalTransition = errors.New("illegal transition")
)
