package store

import (
	"context"
	"database/sql"

	"github.com/redinklabs/redink-api/internal/evaluation"
)

// SaveResultParams collects everything needed to persist one graded
// essay.
type SaveResultParams struct {
	// StudentName is the name extracted from the essay. The store
	// resolves it to an existing student account and rejects unknown
	// names with ErrStudentNotFound.
	StudentName string

	// EssayText is the full recognized essay text.
	EssayText string

	// Requirements is the shared instruction text the essay was graded
	// against.
	Requirements string

	// Evaluation is the validated structured grading result.
	Evaluation *evaluation.Evaluation
}

// SaveOutcome identifies the rows created by a successful save.
type SaveOutcome struct {
	StudentID int64
	EssayID   int64
	RecordID  int64
}

// GradingStore persists grading results.
// Version: 1.0
type GradingStore interface {
	// SaveResult stores the essay and its grading record atomically and
	// returns the created identifiers. Returns ErrStudentNotFound when
	// the student name does not resolve to an account.
	SaveResult(ctx context.Context, params SaveResultParams) (SaveOutcome, error)

	// WithTx returns a new GradingStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) GradingStore
}
