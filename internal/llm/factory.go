package llm

import (
	"context"
	"fmt"
	"time"
)

// NewProvider builds an API-key backed client by name. Vertex AI is built by the gcp
// package because it authenticates with project credentials instead of a key.
func NewProvider(ctx context.Context, name, apiKey, baseURL string, models Models, timeout time.Duration) (Client, error) {
	switch name {
	case "perplexity", "":
		return NewPerplexityClient(apiKey, baseURL, models, timeout)
	case "gemini":
		return NewGeminiClient(ctx, apiKey, models)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
