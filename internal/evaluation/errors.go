package evaluation

import (
	"errors"
	"fmt"
)

// ErrInvalid is the base error for any malformed or incomplete grading
// payload. Callers use it to distinguish "the model responded but the
// content was unusable" from "the model could not be reached".
var ErrInvalid = errors.New("invalid grading payload")

// Specific failure modes. Each wraps ErrInvalid so a single
// errors.Is(err, ErrInvalid) catches them all.
var (
	// ErrNotJSON is returned when no decodable JSON object can be found
	// in the response text.
	ErrNotJSON = fmt.Errorf("%w: no decodable JSON object in response", ErrInvalid)

	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = fmt.Errorf("%w: required field missing", ErrInvalid)

	// ErrBadScore is returned when the score is not numeric or falls
	// outside [0, 100].
	ErrBadScore = fmt.Errorf("%w: score is not a number in [0, 100]", ErrInvalid)

	// ErrBadSuggestions is returned when the suggestions field is not a
	// list of suggestion objects.
	ErrBadSuggestions = fmt.Errorf("%w: suggestions is not a list", ErrInvalid)
)
