package llm

import "context"

// Provider is a thin vendor adapter. The model is chosen per call so the
// client can walk its candidate list over a single connection.
type Provider interface {
	// Generate sends a prompt to the given model and returns the raw text
	// of the first candidate response.
	Generate(ctx context.Context, model string, req Request) (string, error)

	// ListModels enumerates the model identifiers available to the
	// configured API key, filtered to text-generation models.
	ListModels(ctx context.Context) ([]string, error)

	// Name identifies the vendor ("gemini", "openai", "mock").
	Name() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and formatting rules.
	System string

	// Prompt is the user-turn instruction text.
	Prompt string

	MaxTokens   int
	Temperature float32
	TopP        float32
}
