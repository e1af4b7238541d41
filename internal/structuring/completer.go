package structuring

import "context"

// Completer sends a system instruction and a user prompt to the
// language model and returns the raw text response.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
