package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModels are the models used when none are configured.
var DefaultGeminiModels = Models{Fast: "gemini-1.5-flash", Analysis: "gemini-1.5-pro", Reasoning: "gemini-1.5-pro"}

// GeminiClient calls the Gemini API with an API key.
type GeminiClient struct {
	client *genai.Client
	models Models
}

func NewGeminiClient(ctx context.Context, apiKey string, models Models) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	if models.Analysis == "" {
		models = DefaultGeminiModels
	}
	return &GeminiClient{client: client, models: models}, nil
}

func (g *GeminiClient) Invoke(ctx context.Context, prompt string, hint ModelHint) (string, error) {
	model := g.client.GenerativeModel(g.models.Name(hint))
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}
