package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Client so calls wait for a token before reaching the provider.
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// NewRateLimited allows rps calls per second with the given burst. A non-positive rps
// disables limiting.
func NewRateLimited(next Client, rps float64, burst int) *RateLimited {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) Invoke(ctx context.Context, prompt string, hint ModelHint) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm: rate limit wait: %w", err)
	}
	return r.next.Invoke(ctx, prompt, hint)
}
