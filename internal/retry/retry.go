// Package retry implements the retry policy shared by the external
// client wrappers: a fixed attempt budget with exponential backoff
// between attempts, bounded by a floor and a cap.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Policy controls how Do schedules attempts.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Floor is the minimum delay between attempts.
	Floor time.Duration

	// Cap is the maximum delay between attempts.
	Cap time.Duration
}

// DefaultPolicy matches the upstream API rate expectations: three
// attempts total, waiting 4s then 8s between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Floor:       4 * time.Second,
		Cap:         10 * time.Second,
	}
}

// ExhaustedError wraps the final failure after all attempts were spent.
// Attempts records how many attempts were made.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or
// shouldRetry reports the error as not worth retrying. Non-retryable
// errors are returned as-is; an exhausted budget returns an
// *ExhaustedError wrapping the last failure.
func (p Policy) Do(ctx context.Context, shouldRetry func(error) bool, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if shouldRetry != nil && !shouldRetry(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.delay(attempt)):
		case <-ctx.Done():
			return &ExhaustedError{Attempts: attempt, Err: ctx.Err()}
		}
	}

	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}

// delay computes the backoff before the next attempt: floor * 2^(n-1),
// clamped to [floor, cap].
func (p Policy) delay(attempt int) time.Duration {
	floor := p.Floor
	if floor <= 0 {
		floor = time.Millisecond
	}
	d := time.Duration(float64(floor) * math.Pow(2, float64(attempt-1)))
	if p.Cap > 0 && d > p.Cap {
		d = p.Cap
	}
	if d < floor {
		d = floor
	}
	return d
}
