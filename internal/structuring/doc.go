// Package structuring defines the boundary for the external language
// model used to turn free text into task-specific output: extracting a
// student name from recognized essay text, and producing the structured
// grading payload. Callers parse the raw responses themselves.
package structuring
