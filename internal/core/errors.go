package core

import "errors"

// Transient backend failures. Providers wrap these so callers can pick a
// user-facing message with errors.Is.
var (
	ErrRateLimited     = errors.New("backend rate limited")
	ErrOverloaded      = errors.New("backend overloaded")
	ErrBackendInternal = errors.New("backend internal error")
)

var ErrNoJSON = errors.New("no JSON object found in response")

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrOverloaded) ||
		errors.Is(err, ErrBackendInternal)
}
