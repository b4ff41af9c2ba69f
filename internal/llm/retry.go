package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/fmuoria/resume-matcher/internal/logger"
)

const (
	maxRetries   = 3
	retryBackoff = 10 * time.Second
)

// Generator is the subset of the model clients used for entity prompts
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// RetryingGenerator retries a generator when the provider reports rate limiting
type RetryingGenerator struct {
	inner   Generator
	retries int
	backoff time.Duration
}

// WithRetry wraps gen with the default retry policy
func WithRetry(gen Generator) *RetryingGenerator {
	return &RetryingGenerator{inner: gen, retries: maxRetries, backoff: retryBackoff}
}

// ModelName returns the wrapped model name
func (r *RetryingGenerator) ModelName() string {
	return r.inner.ModelName()
}

// GenerateContent calls the wrapped generator, backing off linearly between
// rate-limited attempts. Other errors are returned immediately.
func (r *RetryingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			wait := r.backoff * time.Duration(attempt)
			logger.Ctx(ctx).Warn().
				Err(lastErr).
				Str("model", r.inner.ModelName()).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("rate limited, retrying")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		out, err := r.inner.GenerateContent(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !isRateLimitError(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("rate limit persisted after %d retries: %w", r.retries, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	// OpenAI errors carry a status code; the message also holds the URL
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"resourceexhausted", "429", "rate limit", "quota"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
