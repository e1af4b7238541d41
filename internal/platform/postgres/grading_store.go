package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redinklabs/redink-api/internal/store"
)

// PostgresGradingStore implements the store.GradingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGradingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGradingStore creates a new PostgreSQL implementation of
// the GradingStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresGradingStore(db store.DBTX, logger *slog.Logger) *PostgresGradingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGradingStore{
		db:     db,
		logger: logger.With(slog.String("component", "grading_store")),
	}
}

// Ensure PostgresGradingStore implements store.GradingStore interface
var _ store.GradingStore = (*PostgresGradingStore)(nil)

// WithTx implements store.GradingStore.WithTx
func (s *PostgresGradingStore) WithTx(tx *sql.Tx) store.GradingStore {
	return &PostgresGradingStore{db: tx, logger: s.logger}
}

// SaveResult implements store.GradingStore.SaveResult. The student is
// resolved by name; the essay and its grading record are inserted in a
// single transaction when called with a plain connection.
func (s *PostgresGradingStore) SaveResult(ctx context.Context, params store.SaveResultParams) (store.SaveOutcome, error) {
	db, ok := s.db.(*sql.DB)
	if !ok {
		// Already inside a caller-managed transaction.
		return s.saveResult(ctx, s.db, params)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return store.SaveOutcome{}, fmt.Errorf("%w: begin transaction: %v", store.ErrSaveFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	outcome, err := s.saveResult(ctx, tx, params)
	if err != nil {
		return store.SaveOutcome{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.SaveOutcome{}, fmt.Errorf("%w: commit: %v", store.ErrSaveFailed, err)
	}
	return outcome, nil
}

func (s *PostgresGradingStore) saveResult(ctx context.Context, db store.DBTX, params store.SaveResultParams) (store.SaveOutcome, error) {
	var outcome store.SaveOutcome

	err := db.QueryRowContext(ctx,
		`SELECT id FROM students WHERE name = $1`,
		params.StudentName,
	).Scan(&outcome.StudentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.SaveOutcome{}, fmt.Errorf("%w: %q", store.ErrStudentNotFound, params.StudentName)
	}
	if err != nil {
		return store.SaveOutcome{}, fmt.Errorf("%w: resolve student: %v", store.ErrSaveFailed, err)
	}

	err = db.QueryRowContext(ctx,
		`INSERT INTO essays (student_id, essay_text, requirements)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		outcome.StudentID, params.EssayText, params.Requirements,
	).Scan(&outcome.EssayID)
	if err != nil {
		return store.SaveOutcome{}, fmt.Errorf("%w: insert essay: %v", store.ErrSaveFailed, err)
	}

	evaluationJSON, err := json.Marshal(params.Evaluation)
	if err != nil {
		return store.SaveOutcome{}, fmt.Errorf("%w: marshal evaluation: %v", store.ErrSaveFailed, err)
	}

	err = db.QueryRowContext(ctx,
		`INSERT INTO grading_records (essay_id, score, evaluation, graded_by)
		 VALUES ($1, $2, $3, 'AI')
		 RETURNING id`,
		outcome.EssayID, params.Evaluation.Score, evaluationJSON,
	).Scan(&outcome.RecordID)
	if err != nil {
		return store.SaveOutcome{}, fmt.Errorf("%w: insert grading record: %v", store.ErrSaveFailed, err)
	}

	s.logger.Info("grading result saved",
		"student_id", outcome.StudentID,
		"essay_id", outcome.EssayID,
		"record_id", outcome.RecordID)
	return outcome, nil
}
