package structuring

import "errors"

// Common errors returned by Completer implementations.
var (
	// ErrTransient is returned for temporary upstream failures that
	// might resolve on retry.
	ErrTransient = errors.New("transient structuring failure")

	// ErrEmptyResponse is returned when the model responds with no
	// content. This is a content problem, not a transport problem, and
	// is never retried.
	ErrEmptyResponse = errors.New("empty response from language model")
)
