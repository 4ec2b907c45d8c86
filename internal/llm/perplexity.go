package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultPerplexityURL = "https://api.perplexity.ai/chat/completions"
	perplexityMaxTokens  = 6000
)

// DefaultPerplexityModels are the models used when none are configured.
var DefaultPerplexityModels = Models{Fast: "sonar", Analysis: "sonar-pro", Reasoning: "sonar-reasoning"}

// PerplexityClient calls the Perplexity chat completions endpoint.
type PerplexityClient struct {
	apiKey  string
	baseURL string
	models  Models
	http    *http.Client
}

// NewPerplexityClient returns a client for the given key. An empty baseURL uses the public endpoint.
func NewPerplexityClient(apiKey, baseURL string, models Models, timeout time.Duration) (*PerplexityClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("perplexity: %w", ErrMissingAPIKey)
	}
	if baseURL == "" {
		baseURL = DefaultPerplexityURL
	}
	if models.Analysis == "" {
		models = DefaultPerplexityModels
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &PerplexityClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		models:  models,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *PerplexityClient) Invoke(ctx context.Context, prompt string, hint ModelHint) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.models.Name(hint),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
		MaxTokens:   perplexityMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("perplexity: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("perplexity: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("perplexity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{Provider: "Perplexity", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("perplexity: decoding response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
