package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redinklabs/redink-api/internal/telemetry"
)

// ManagerConfig holds configuration for the task manager.
type ManagerConfig struct {
	// IdlePollInterval is how long the background loop sleeps when the
	// queue is empty before re-checking.
	IdlePollInterval time.Duration

	// TerminalTTL bounds how long completed and failed tasks stay
	// queryable. Zero keeps them for the lifetime of the process.
	TerminalTTL time.Duration
}

// DefaultManagerConfig returns a ManagerConfig with reasonable defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		IdlePollInterval: time.Second,
	}
}

// Manager owns the task registry and FIFO queue, and runs submitted
// work strictly one at a time in submission order on a single
// background loop. Construct one per composition root and inject it;
// there is no package-level instance.
type Manager struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*record
	queue   []*record
	started bool

	config ManagerConfig
	logger *slog.Logger
}

// NewManager creates a task manager. If logger is nil the default
// logger is used.
func NewManager(config ManagerConfig, logger *slog.Logger) *Manager {
	if config.IdlePollInterval <= 0 {
		config.IdlePollInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		tasks:  make(map[uuid.UUID]*record),
		config: config,
		logger: logger.With(slog.String("component", "task_manager")),
	}
}

// Submit registers a new pending task, appends it to the tail of the
// queue, and returns its identifier. The task is visible to GetStatus
// before Submit returns; execution is deferred to the background loop.
// Submit never blocks.
func (m *Manager) Submit(totalCount int, work WorkFunc) uuid.UUID {
	rec := &record{
		id:         uuid.New(),
		status:     StatusPending,
		totalCount: totalCount,
		work:       work,
	}

	m.mu.Lock()
	m.tasks[rec.id] = rec
	m.queue = append(m.queue, rec)
	depth := len(m.queue)
	m.mu.Unlock()

	telemetry.TasksSubmitted.Inc()
	telemetry.QueueDepth.Set(float64(depth))

	m.logger.Info("task submitted",
		"task_id", rec.id,
		"total_count", totalCount,
		"queue_depth", depth)
	return rec.id
}

// GetStatus returns a snapshot of the task's current fields, or false
// if the identifier is unknown. It never panics and never returns an
// error; callers must tolerate fields changing between polls.
func (m *Manager) GetStatus(id uuid.UUID) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tasks[id]
	if !ok {
		return Snapshot{}, false
	}
	return rec.snapshot(), true
}

// Start launches the single background execution loop. It is
// idempotent: calling it again while the loop is active is a no-op, so
// the one-task-at-a-time ordering guarantee cannot be violated by a
// duplicate consumer. The loop runs until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		m.logger.Warn("task manager already started, ignoring duplicate start")
		return
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info("task manager background loop starting")
	go m.run(ctx)
}

// run is the background loop: pop the queue head, execute it, repeat.
// When the queue is empty it sleeps for the idle poll interval instead
// of busy-spinning.
func (m *Manager) run(ctx context.Context) {
	for {
		rec := m.dequeue()
		if rec == nil {
			select {
			case <-time.After(m.config.IdlePollInterval):
			case <-ctx.Done():
				m.logger.Info("task manager background loop stopping", "reason", ctx.Err())
				return
			}
			continue
		}

		m.execute(ctx, rec)
		m.pruneTerminal()

		select {
		case <-ctx.Done():
			m.logger.Info("task manager background loop stopping", "reason", ctx.Err())
			return
		default:
		}
	}
}

func (m *Manager) dequeue() *record {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return nil
	}
	rec := m.queue[0]
	m.queue = m.queue[1:]
	telemetry.QueueDepth.Set(float64(len(m.queue)))
	return rec
}

// execute runs one task to its terminal state.
func (m *Manager) execute(ctx context.Context, rec *record) {
	m.mu.Lock()
	rec.status = StatusRunning
	rec.currentStep = "task started"
	m.mu.Unlock()

	logger := m.logger.With("task_id", rec.id)
	logger.Info("task started", "total_count", rec.totalCount)

	report := func(completedCount int, step string) {
		m.reportProgress(rec.id, completedCount, step)
	}

	result, err := m.runWork(ctx, rec, report)

	m.mu.Lock()
	defer m.mu.Unlock()
	rec.finishedAt = time.Now()
	if err != nil {
		rec.status = StatusFailed
		rec.err = err.Error()
		rec.currentStep = "task failed"
		telemetry.TasksFailed.Inc()
		logger.Error("task failed", "error", err)
		return
	}
	rec.status = StatusCompleted
	rec.progress = 100
	rec.result = result
	rec.currentStep = "task complete"
	telemetry.TasksCompleted.Inc()
	logger.Info("task completed")
}

// runWork invokes the task's work, converting a panic into a task
// failure so one bad unit of work cannot take down the loop.
func (m *Manager) runWork(ctx context.Context, rec *record, report ProgressFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return rec.work(ctx, report)
}

// reportProgress applies a progress update from inside a running task.
// Updates to terminal tasks are dropped, and completed counts never
// move backwards, keeping progress monotonically non-decreasing.
func (m *Manager) reportProgress(id uuid.UUID, completedCount int, step string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tasks[id]
	if !ok || rec.status != StatusRunning {
		return
	}
	if completedCount < rec.completedCount {
		completedCount = rec.completedCount
	}
	rec.completedCount = completedCount
	rec.currentStep = step
	if rec.totalCount > 0 {
		if p := completedCount * 100 / rec.totalCount; p > rec.progress {
			rec.progress = p
		}
	}
}

// pruneTerminal evicts terminal tasks older than TerminalTTL. With a
// zero TTL every task is retained for the lifetime of the process.
func (m *Manager) pruneTerminal() {
	if m.config.TerminalTTL <= 0 {
		return
	}

	cutoff := time.Now().Add(-m.config.TerminalTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.tasks {
		if rec.status.Terminal() && !rec.finishedAt.IsZero() && rec.finishedAt.Before(cutoff) {
			delete(m.tasks, id)
		}
	}
}
