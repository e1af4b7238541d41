package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store.
	ErrNotFound = errors.New("entity not found")

	// ErrStudentNotFound indicates that the extracted student name does
	// not resolve to any student account.
	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)

	// ErrSaveFailed is returned when persisting a grading result fails
	// for a reason other than an unknown student.
	ErrSaveFailed = errors.New("failed to save grading result")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
