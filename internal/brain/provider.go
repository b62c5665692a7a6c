// Package brain talks to an external language model that can supply
// alternate entity and summary hints for articles.
package brain

import "context"

// Provider is the interface for model backends.
type Provider interface {
	// Name returns the provider name (e.g. "ollama").
	Name() string

	// Generate sends a prompt and returns the response.
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to a provider.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int

	// JSON asks the backend to constrain output to a JSON document.
	JSON bool
}

// Response is the provider's response.
type Response struct {
	Content     string
	Model       string
	RawResponse string
}
