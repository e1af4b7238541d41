package recognition

import "context"

// Recognizer converts an image payload into recognized text.
type Recognizer interface {
	// Recognize extracts the text contained in imageBytes. The returned
	// string joins recognized lines with newlines. Errors are classified
	// with the sentinels in errors.go.
	Recognize(ctx context.Context, imageBytes []byte) (string, error)
}
