package recognition

import "errors"

// Common errors returned by Recognizer implementations.
var (
	// ErrTransient is returned for temporary upstream failures (network,
	// timeouts, 5xx responses) that might resolve on retry.
	ErrTransient = errors.New("transient recognition failure")

	// ErrInvalidCredential is returned when the upstream rejects the
	// cached credential. Implementations discard the credential before
	// returning this so the next call re-acquires one.
	ErrInvalidCredential = errors.New("recognition credential invalid or expired")

	// ErrEmptyInput is returned when the image payload is empty.
	ErrEmptyInput = errors.New("image payload is empty")
)
