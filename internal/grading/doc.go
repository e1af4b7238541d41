// Package grading implements the workflow engine that drives scanned
// essays through the full pipeline: text recognition, student name
// extraction, structured evaluation, and persistence. A batch shares
// one recognized requirements text across all essays; each essay is
// processed independently so one failure never aborts the batch.
package grading
