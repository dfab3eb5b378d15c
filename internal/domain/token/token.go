// Package token issues and validates single-use join tokens for interviews.
package token

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Token format constants.
const (
	DefaultLength = 32
	minLength     = 16
	maxLength     = 64

	// DefaultTTL matches the platform's invitation window.
	DefaultTTL = time.Hour

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New generates a random alphanumeric join token of the given length.
// A non-positive length falls back to DefaultLength.
func New(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// Expiry returns the expiry instant for a token issued now.
func Expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(ttl)
}

// Expired reports whether a token past its expiry at the given instant.
// A zero expiry means the token never becomes valid.
func Expired(expiry, now time.Time) bool {
	if expiry.IsZero() {
		return true
	}
	return now.After(expiry)
}

// ValidFormat reports whether a candidate-supplied token looks like one we
// could have issued. Used to short-circuit obviously bogus input before any
// store lookup.
func ValidFormat(tok string) bool {
	if len(tok) < minLength || len(tok) > maxLength {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
