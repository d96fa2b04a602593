package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/metrics"
)

// Embedder is an embedding provider using the OpenAI-compatible API.
// Transient failures (network, 5xx, throttling) are retried with
// exponential backoff and jitter; anything else fails immediately.
type Embedder struct {
	client      *openai.Client
	model       openai.EmbeddingModel
	dimensions  int
	maxAttempts int
	timeout     time.Duration
	logger      *zap.Logger
}

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Dimensions  int
	MaxAttempts int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Embedder{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       openai.EmbeddingModel(cfg.Model),
		dimensions:  cfg.Dimensions,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		logger:      cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Newlines degrade embedding quality on some models.
	cleaned := strings.ReplaceAll(text, "\n", " ")

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	var attempt int
	result, err := backoff.RetryNotifyWithData(
		func() (domain.EmbeddingResult, error) {
			attempt++
			res, err := e.embedOnce(ctx, cleaned)
			if err != nil && !isTransient(err) {
				return domain.EmbeddingResult{}, backoff.Permanent(err)
			}
			if err != nil && attempt >= e.maxAttempts {
				return domain.EmbeddingResult{}, backoff.Permanent(err)
			}
			return res, err
		},
		backoff.WithContext(bo, ctx),
		func(err error, next time.Duration) {
			metrics.EmbeddingRetriesTotal.WithLabelValues(string(e.model)).Inc()
			e.logger.Warn("Retrying embedding request",
				zap.Error(err), zap.Duration("backoff", next), zap.Int("attempt", attempt))
		},
	)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return result, nil
}

func (e *Embedder) embedOnce(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		return domain.EmbeddingResult{}, parseEmbeddingError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProvider)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(string(e.model)).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(string(e.model), "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(string(e.model), "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// isTransient reports whether an embedding failure is worth retrying:
// throttling, provider 5xx, and transport-level errors. Auth failures and
// malformed input are permanent.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 0 {
			return true // connection-level failure
		}
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	// Non-API errors are transport failures (DNS, reset, timeout).
	return true
}

// parseEmbeddingError wraps an API failure with domain.ErrEmbeddingProvider,
// preserving the provider status and message for logs.
func parseEmbeddingError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEmbeddingProvider)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrEmbeddingProvider)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, domain.ErrEmbeddingProvider)
}
