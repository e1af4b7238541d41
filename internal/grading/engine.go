package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redinklabs/redink-api/internal/evaluation"
	"github.com/redinklabs/redink-api/internal/recognition"
	"github.com/redinklabs/redink-api/internal/store"
	"github.com/redinklabs/redink-api/internal/structuring"
	"github.com/redinklabs/redink-api/internal/telemetry"
)

// Engine coordinates one essay (or a batch of essays) through the full
// grading pipeline.
type Engine struct {
	recognizer recognition.Recognizer
	completer  structuring.Completer
	store      store.GradingStore
	logger     *slog.Logger
}

// NewEngine creates a workflow engine with the injected collaborators.
// If logger is nil the default logger is used.
func NewEngine(
	recognizer recognition.Recognizer,
	completer structuring.Completer,
	gradingStore store.GradingStore,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		recognizer: recognizer,
		completer:  completer,
		store:      gradingStore,
		logger:     logger.With(slog.String("component", "workflow_engine")),
	}
}

// ProcessOne runs a single essay through recognition, name extraction,
// evaluation, and persistence. A stage failure short-circuits the
// remaining stages for this essay only: the failure is recorded on the
// ItemResult and never escapes, so a batch is never aborted by one
// essay.
func (e *Engine) ProcessOne(ctx context.Context, essayImage []byte, requirements string) ItemResult {
	result := ItemResult{StudentName: UnknownStudent}

	err := e.processStages(ctx, essayImage, requirements, &result)
	if err != nil {
		result.Error = err.Error()
		result.Persisted = false
		telemetry.EssaysFailed.Inc()
		e.logger.Warn("essay processing failed",
			"student_name", result.StudentName,
			"error", err)
		return result
	}

	telemetry.EssaysGraded.Inc()
	return result
}

// processStages runs the four pipeline stages in order, filling in
// result as it goes. The first failing stage stops the pipeline.
func (e *Engine) processStages(ctx context.Context, essayImage []byte, requirements string, result *ItemResult) error {
	e.logger.Info("stage 1/4: recognizing essay text")
	essayText, err := e.recognizer.Recognize(ctx, essayImage)
	if err != nil {
		return fmt.Errorf("recognize essay: %w", err)
	}
	if strings.TrimSpace(essayText) == "" {
		return ErrEmptyRecognition
	}

	e.logger.Info("stage 2/4: extracting student name")
	studentName, err := e.extractStudentName(ctx, essayText)
	if err != nil {
		return fmt.Errorf("extract student name: %w", err)
	}
	result.StudentName = studentName

	e.logger.Info("stage 3/4: grading essay", "student_name", studentName)
	eval, err := e.gradeEssay(ctx, requirements, essayText)
	if err != nil {
		return fmt.Errorf("grade essay: %w", err)
	}
	result.Evaluation = eval

	e.logger.Info("stage 4/4: saving grading result", "student_name", studentName)
	outcome, err := e.store.SaveResult(ctx, store.SaveResultParams{
		StudentName:  studentName,
		EssayText:    essayText,
		Requirements: requirements,
		Evaluation:   eval,
	})
	if err != nil {
		return fmt.Errorf("save grading result: %w", err)
	}
	result.Persisted = true
	result.RecordID = outcome.RecordID
	telemetry.EssaysPersisted.Inc()

	e.logger.Info("grading result saved",
		"student_name", studentName,
		"record_id", outcome.RecordID,
		"score", eval.Score)
	return nil
}

// ProcessBatch grades a batch of essays that share one requirements
// image. Stage A recognizes the requirements once; its failure aborts
// the whole batch. Stage B processes essays strictly in input order,
// reporting progress before and after each one. Stage C reduces the
// per-essay results into a BatchReport. Past Stage A the batch always
// completes with a report, even if every essay failed.
func (e *Engine) ProcessBatch(
	ctx context.Context,
	promptImage []byte,
	essayImages [][]byte,
	onProgress ProgressFunc,
) (*BatchReport, error) {
	total := len(essayImages)
	report := func(completed int, step string) {
		if onProgress != nil {
			onProgress(completed, step)
		}
	}

	e.logger.Info("batch started", "total_essays", total)
	report(0, "recognizing essay requirements")

	requirementsText, err := e.recognizer.Recognize(ctx, promptImage)
	if err != nil {
		return nil, fmt.Errorf("recognize requirements: %w", err)
	}
	requirements := strings.TrimSpace(requirementsText)
	if requirements == "" {
		return nil, fmt.Errorf("recognize requirements: %w", ErrEmptyRecognition)
	}

	results := make([]ItemResult, 0, total)
	completed := 0
	for i, essayImage := range essayImages {
		report(completed, fmt.Sprintf("processing essay %d/%d", i+1, total))

		results = append(results, e.ProcessOne(ctx, essayImage, requirements))
		completed++

		report(completed, fmt.Sprintf("finished %d/%d essays", completed, total))
	}

	report(completed, "building final report")
	batchReport := buildReport(results)
	e.logger.Info("batch finished",
		"total", batchReport.Total,
		"succeeded", batchReport.Succeeded,
		"failed", batchReport.Failed,
		"persisted", batchReport.Persisted,
		"average_score", batchReport.AverageScore)
	return batchReport, nil
}

// extractStudentName asks the model for the student's name and trims
// decorative labels and punctuation from the response.
func (e *Engine) extractStudentName(ctx context.Context, essayText string) (string, error) {
	raw, err := e.completer.Complete(ctx, nameExtractionSystemPrompt, nameExtractionPrompt(essayText))
	if err != nil {
		return "", err
	}

	name := cleanStudentName(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// gradeEssay asks the model for the structured evaluation and parses
// its raw response.
func (e *Engine) gradeEssay(ctx context.Context, requirements, essayText string) (*evaluation.Evaluation, error) {
	raw, err := e.completer.Complete(ctx, gradingSystemPrompt, gradingPrompt(requirements, essayText))
	if err != nil {
		return nil, err
	}
	return evaluation.Parse(raw)
}

// cleanStudentName strips labels, quotes, and trailing punctuation the
// model tends to wrap around the bare name.
func cleanStudentName(raw string) string {
	name := strings.TrimSpace(raw)
	for _, label := range []string{"Name:", "name:", "NAME:", "Student:", "student:"} {
		name = strings.TrimSpace(strings.TrimPrefix(name, label))
	}
	return strings.Trim(name, "\"'`.,:; \t\n")
}
