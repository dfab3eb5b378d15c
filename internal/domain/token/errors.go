package token

import "errors"

// Sentinel kinds for join-token failures.
//
// ErrRejected is the candidate-facing kind: it deliberately does not reveal
// whether a token ever existed. ErrExpired and ErrConsumed are operator-facing
// diagnostics and must not leak to the join endpoint response body.
var (
	ErrRejected = errors.New("join rejected")
	ErrExpired  = errors.New("join token expired")
	ErrConsumed = errors.New("join token already consumed")
)
