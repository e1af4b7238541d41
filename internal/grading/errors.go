package grading

import "errors"

// Common errors returned by the workflow engine.
var (
	// ErrEmptyRecognition is returned when recognition produced no text
	// for an image. Never retried: the client already retried transport
	// failures, so an empty result is a content problem.
	ErrEmptyRecognition = errors.New("recognition produced no text")

	// ErrEmptyName is returned when the model response contained no
	// usable student name.
	ErrEmptyName = errors.New("could not extract a student name")
)
