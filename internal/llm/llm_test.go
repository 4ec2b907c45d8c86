package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerplexityInvoke(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"overall_score\": 70}"}}]}`))
	}))
	defer srv.Close()

	c, err := NewPerplexityClient("test-key", srv.URL, Models{}, time.Second)
	require.NoError(t, err)

	out, err := c.Invoke(context.Background(), "profile this", ModelFast)
	require.NoError(t, err)
	assert.Equal(t, `{"overall_score": 70}`, out)

	assert.Equal(t, "sonar", got.Model)
	assert.Equal(t, 6000, got.MaxTokens)
	assert.Zero(t, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chatMessage{Role: "user", Content: "profile this"}, got.Messages[0])
}

func TestPerplexityErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx",
			status: http.StatusUnauthorized,
			body:   "invalid key",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
				assert.Equal(t, "invalid key", apiErr.Body)
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
		{
			name:   "blank content",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"content":"  "}}]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewPerplexityClient("k", srv.URL, DefaultPerplexityModels, time.Second)
			require.NoError(t, err)
			_, err = c.Invoke(context.Background(), "p", ModelAnalysis)
			tt.check(t, err)
		})
	}
}

func TestNewPerplexityClientRequiresKey(t *testing.T) {
	_, err := NewPerplexityClient("", "", Models{}, 0)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestModelsName(t *testing.T) {
	m := Models{Analysis: "pro"}
	assert.Equal(t, "pro", m.Name(ModelFast))
	assert.Equal(t, "pro", m.Name(ModelReasoning))
	assert.Equal(t, "sonar", DefaultPerplexityModels.Name(ModelFast))
	assert.Equal(t, "sonar-pro", DefaultPerplexityModels.Name(ModelAnalysis))
}

func TestRateLimitedPassesThrough(t *testing.T) {
	calls := 0
	next := ClientFunc(func(ctx context.Context, prompt string, model ModelHint) (string, error) {
		calls++
		return prompt + ":" + string(model), nil
	})
	rl := NewRateLimited(next, 0, 1)

	for i := 0; i < 3; i++ {
		out, err := rl.Invoke(context.Background(), "x", ModelAnalysis)
		require.NoError(t, err)
		assert.Equal(t, "x:analysis", out)
	}
	assert.Equal(t, 3, calls)
}

func TestRateLimitedHonoursCancellation(t *testing.T) {
	next := ClientFunc(func(ctx context.Context, prompt string, model ModelHint) (string, error) {
		return "ok", nil
	})
	rl := NewRateLimited(next, 0.001, 1)

	_, err := rl.Invoke(context.Background(), "first", ModelFast)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rl.Invoke(ctx, "second", ModelFast)
	assert.Error(t, err)
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), "bard", "k", "", Models{}, time.Second)
	assert.EqualError(t, err, "unknown provider: bard")
}
