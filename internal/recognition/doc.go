// Package recognition defines the boundary for external text
// recognition (OCR) services. It abstracts the details of the OCR
// provider, allowing the grading workflow to turn essay images into
// text without coupling to a specific external service.
package recognition
