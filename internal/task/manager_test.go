package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(ManagerConfig{IdlePollInterval: time.Millisecond}, nil)
}

// waitForTerminal polls until the task reaches a terminal state or the
// deadline expires.
func waitForTerminal(t *testing.T, m *Manager, id uuid.UUID) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, ok := m.GetStatus(id)
		require.True(t, ok, "task %s disappeared before reaching a terminal state", id)
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal state", id)
	return Snapshot{}
}

func TestSubmitVisibleBeforeExecution(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	// Not started: nothing executes, the task stays pending.
	id := m.Submit(3, func(ctx context.Context, report ProgressFunc) (any, error) {
		return nil, nil
	})

	snap, ok := m.GetStatus(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, snap.Status)
	assert.Equal(t, 0, snap.Progress)
	assert.Equal(t, 3, snap.TotalCount)
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.Error)
}

func TestGetStatusUnknownID(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	_, ok := m.GetStatus(uuid.New())
	assert.False(t, ok)
}

func TestTasksRunInSubmissionOrder(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var order []int

	ids := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		ids = append(ids, m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}))
	}

	m.Start(ctx)
	for _, id := range ids {
		waitForTerminal(t, m, id)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestCompletedTaskCarriesResult(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	id := m.Submit(2, func(ctx context.Context, report ProgressFunc) (any, error) {
		report(1, "halfway")
		report(2, "done")
		return "the result", nil
	})

	snap := waitForTerminal(t, m, id)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, 2, snap.CompletedCount)
	assert.Equal(t, "the result", snap.Result)
	assert.Empty(t, snap.Error)
}

func TestFailedTaskCarriesError(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	id := m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
		return "partial", errors.New("stage A exploded")
	})

	snap := waitForTerminal(t, m, id)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "stage A exploded", snap.Error)
	// Results are only exposed for completed tasks.
	assert.Nil(t, snap.Result)
}

func TestPanicBecomesFailure(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	panicID := m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
		panic("boom")
	})
	nextID := m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
		return "ok", nil
	})

	snap := waitForTerminal(t, m, panicID)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "boom")

	// The loop survives and still executes the next task.
	next := waitForTerminal(t, m, nextID)
	assert.Equal(t, StatusCompleted, next.Status)
}

func TestProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	id := m.Submit(4, func(ctx context.Context, report ProgressFunc) (any, error) {
		report(2, "forward")
		report(1, "backward")
		return nil, nil
	})

	waitForTerminal(t, m, id)

	snap, ok := m.GetStatus(id)
	require.True(t, ok)
	// The backwards report must not have reduced the completed count.
	assert.Equal(t, 2, snap.CompletedCount)
}

func TestProgressAfterTerminalIsDropped(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	var leaked ProgressFunc
	id := m.Submit(10, func(ctx context.Context, report ProgressFunc) (any, error) {
		leaked = report
		return nil, nil
	})

	snap := waitForTerminal(t, m, id)
	require.Equal(t, StatusCompleted, snap.Status)

	leaked(9, "too late")

	after, ok := m.GetStatus(id)
	require.True(t, ok)
	assert.Equal(t, snap.CompletedCount, after.CompletedCount)
	assert.Equal(t, "task complete", after.CurrentStep)
}

func TestStartIsIdempotent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx)
	m.Start(ctx)

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	ids := make([]uuid.UUID, 0, 4)
	for i := 0; i < 4; i++ {
		ids = append(ids, m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil, nil
		}))
	}

	for _, id := range ids {
		waitForTerminal(t, m, id)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxRunning, "duplicate Start must not add a second consumer")
}

func TestTerminalTTLPrunesOldTasks(t *testing.T) {
	t.Parallel()

	m := NewManager(ManagerConfig{
		IdlePollInterval: time.Millisecond,
		TerminalTTL:      10 * time.Millisecond,
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	id := m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
		return nil, nil
	})
	waitForTerminal(t, m, id)

	time.Sleep(20 * time.Millisecond)
	// Prune runs after each executed task, so push one more through.
	flush := m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
		return nil, nil
	})
	waitForTerminal(t, m, flush)

	_, ok := m.GetStatus(id)
	assert.False(t, ok, "terminal task should be evicted after its TTL")
}

func TestSnapshotIsImmutableCopy(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	id := m.Submit(1, func(ctx context.Context, report ProgressFunc) (any, error) {
		return nil, nil
	})

	before, ok := m.GetStatus(id)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	waitForTerminal(t, m, id)

	// The earlier snapshot still reflects the pending state.
	assert.Equal(t, StatusPending, before.Status)
	assert.Equal(t, 0, before.Progress)
}
