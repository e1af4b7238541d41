package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps test runs quick while preserving the policy shape.
func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Floor:       time.Millisecond,
		Cap:         4 * time.Millisecond,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), nil, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	transient := errors.New("transient")
	calls := 0
	err := fastPolicy().Do(context.Background(), func(err error) bool {
		return errors.Is(err, transient)
	}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	t.Parallel()

	transient := errors.New("transient")
	calls := 0
	err := fastPolicy().Do(context.Background(), func(error) bool { return true }, func(ctx context.Context) error {
		calls++
		return transient
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, transient)
}

func TestDoReturnsNonRetryableImmediately(t *testing.T) {
	t.Parallel()

	fatal := errors.New("fatal")
	calls := 0
	err := fastPolicy().Do(context.Background(), func(error) bool { return false }, func(ctx context.Context) error {
		calls++
		return fatal
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	// Non-retryable failures are returned unwrapped.
	assert.Equal(t, fatal, err)
	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestDoStopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("transient")
	calls := 0

	policy := Policy{MaxAttempts: 3, Floor: time.Second, Cap: time.Second}
	err := policy.Do(ctx, func(error) bool { return true }, func(ctx context.Context) error {
		calls++
		cancel()
		return transient
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
}

func TestDelayClamping(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 5, Floor: 4 * time.Second, Cap: 10 * time.Second}

	assert.Equal(t, 4*time.Second, p.delay(1))
	assert.Equal(t, 8*time.Second, p.delay(2))
	assert.Equal(t, 10*time.Second, p.delay(3))
	assert.Equal(t, 10*time.Second, p.delay(4))
}
