package grading

import (
	"math"

	"github.com/redinklabs/redink-api/internal/evaluation"
)

// UnknownStudent is the sentinel name reported when extraction never
// produced a usable student name.
const UnknownStudent = "unknown"

// ProgressFunc receives batch progress updates: how many essays have
// finished and a human-readable description of the stage in progress.
// Implementations must be cheap and must never fail.
type ProgressFunc func(completedCount int, step string)

// ItemResult is the outcome of one essay inside a batch. An item with
// Error set always has Persisted false.
type ItemResult struct {
	StudentName string                 `json:"student_name"`
	Evaluation  *evaluation.Evaluation `json:"evaluation,omitempty"`
	Persisted   bool                   `json:"persisted"`
	RecordID    int64                  `json:"record_id,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// succeeded reports whether the essay was graded without any stage
// failing.
func (r ItemResult) succeeded() bool {
	return r.Evaluation != nil && r.Error == ""
}

// BatchReport aggregates a finished batch. It is computed once when the
// batch completes and never mutated afterward.
type BatchReport struct {
	Total        int          `json:"total"`
	Succeeded    int          `json:"succeeded"`
	Failed       int          `json:"failed"`
	Persisted    int          `json:"persisted"`
	AverageScore float64      `json:"average_score"`
	Items        []ItemResult `json:"items"`
}

// buildReport reduces per-essay results into a BatchReport. The average
// covers only essays with a parsed score and is 0 when there are none.
func buildReport(items []ItemResult) *BatchReport {
	report := &BatchReport{
		Total: len(items),
		Items: items,
	}

	var total float64
	var scored int
	for _, item := range items {
		if item.succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
		if item.Persisted {
			report.Persisted++
		}
		if item.Evaluation != nil {
			total += item.Evaluation.Score
			scored++
		}
	}
	if scored > 0 {
		report.AverageScore = math.Round(total/float64(scored)*100) / 100
	}
	return report
}
