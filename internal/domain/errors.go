package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrCompletionProvider signals a completion provider failure not
	// otherwise classified.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrContextTooLong signals that the assembled prompt or requested
	// completion exceeds the model's context limit.
	ErrContextTooLong = errors.New("context length exceeded")
	// ErrInvalidRequest signals a malformed generation request rejected by
	// the provider before generation.
	ErrInvalidRequest = errors.New("invalid completion request")
	// ErrRateLimited signals provider throttling.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmptyCompletion signals a usable response with no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// RateLimitError wraps ErrRateLimited with the provider's retry hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: retry after %s", ErrRateLimited.Error(), e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimit creates a rate limit error with an optional retry hint.
func NewRateLimit(retryAfter time.Duration) error {
	return &RateLimitError{RetryAfter: retryAfter}
}
