package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task.
type Status string

// Possible task status values. Transitions are monotonic:
// pending -> running -> completed | failed. Terminal states are never
// revisited.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProgressFunc lets a running unit of work report intermediate
// progress. Implementations must be cheap and must never fail: it is a
// synchronous in-process state mutation, not a suspension point.
type ProgressFunc func(completedCount int, step string)

// WorkFunc is one deferred unit of work. The engine invokes it with a
// ProgressFunc already bound to the task's identifier, so the work
// never needs to discover its own id. The returned value becomes the
// task's result; a non-nil error marks the task failed.
type WorkFunc func(ctx context.Context, report ProgressFunc) (any, error)

// Snapshot is a point-in-time copy of a task's externally visible
// fields. Fields may change between successive polls; a snapshot never
// does.
type Snapshot struct {
	ID             uuid.UUID `json:"task_id"`
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"`
	CurrentStep    string    `json:"current_step"`
	TotalCount     int       `json:"total_count"`
	CompletedCount int       `json:"completed_count"`
	Result         any       `json:"result,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// record is the engine's mutable view of one task. All access goes
// through the Manager's mutex.
type record struct {
	id             uuid.UUID
	status         Status
	progress       int
	currentStep    string
	totalCount     int
	completedCount int
	result         any
	err            string
	work           WorkFunc
	finishedAt     time.Time
}

func (r *record) snapshot() Snapshot {
	s := Snapshot{
		ID:             r.id,
		Status:         r.status,
		Progress:       r.progress,
		CurrentStep:    r.currentStep,
		TotalCount:     r.totalCount,
		CompletedCount: r.completedCount,
	}
	switch r.status {
	case StatusCompleted:
		s.Result = r.result
	case StatusFailed:
		s.Error = r.err
	}
	return s
}
