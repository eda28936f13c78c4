package driven

import "context"

// GenerationService synthesises an answer from a prompt. This is an
// optional service - when nil or failing, the orchestrator builds a
// templated answer from the retrieved chunks instead.
type GenerationService interface {
	// Generate produces text for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
