package ai

import (
	"context"
)

// Gateway sends a prompt to the generative model and returns the raw reply text.
// Implementations make exactly one outbound call per invocation and never retry.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int32   `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// DefaultGenerationConfig is the sampling setup itinerary generation is tuned for.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.7,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 8192,
}
