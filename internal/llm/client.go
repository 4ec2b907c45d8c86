// Package llm defines the contract the analysis pipeline uses to call an external model,
// plus API-key backed providers and a rate limiting wrapper.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ModelHint selects a model class without naming a vendor model.
type ModelHint string

const (
	// ModelFast is used for document profiling.
	ModelFast ModelHint = "fast"
	// ModelAnalysis is used for framework evaluations.
	ModelAnalysis ModelHint = "analysis"
	// ModelReasoning is available for slower chain-of-thought models.
	ModelReasoning ModelHint = "reasoning"
)

var (
	ErrEmptyResponse = errors.New("llm: model returned an empty response")
	ErrMissingAPIKey = errors.New("llm: api key is not configured")
)

// Client sends a single prompt and returns the model's raw text. Implementations must
// report transport and auth failures as errors, never as empty text.
type Client interface {
	Invoke(ctx context.Context, prompt string, model ModelHint) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string, model ModelHint) (string, error)

func (f ClientFunc) Invoke(ctx context.Context, prompt string, model ModelHint) (string, error) {
	return f(ctx, prompt, model)
}

// APIError is returned when a provider answers with a non-2xx status.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// Models maps each hint to a provider model name.
type Models struct {
	Fast      string
	Analysis  string
	Reasoning string
}

// Name returns the model configured for hint, falling back to the analysis model.
func (m Models) Name(hint ModelHint) string {
	switch hint {
	case ModelFast:
		if m.Fast != "" {
			return m.Fast
		}
	case ModelReasoning:
		if m.Reasoning != "" {
			return m.Reasoning
		}
	}
	return m.Analysis
}
