package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/metrics"
)

// separatorToken terminates generations that try to continue the transcript.
const separatorToken = "<|endoftext|>"

// CompletionClient calls an OpenAI-compatible chat completion API
// (a gateway like OpenRouter fronting several model families).
// Provider failures are classified into domain errors; the orchestrator
// maps those to outcome statuses. No retries here: retrying a paid
// generation call is a caller policy.
type CompletionClient struct {
	client  *openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// CompletionConfig holds the completion provider settings.
type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewCompletionClient creates an OpenAI-compatible chat completion client.
func NewCompletionClient(cfg *CompletionConfig) *CompletionClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &CompletionClient{
		client:  openai.NewClientWithConfig(clientCfg),
		timeout: timeout,
		logger:  cfg.Logger,
	}
}

// Generate runs one chat completion and returns the reply text.
func (c *CompletionClient) Generate(
	ctx context.Context, messages []domain.PromptMessage, cfg domain.GenerationConfig,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    toChatMessages(messages),
		Temperature: cfg.Temperature,
		TopP:        1.0,
		MaxTokens:   cfg.MaxTokens,
		Stop:        []string{separatorToken},
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)
	metrics.CompletionRequestDuration.WithLabelValues(cfg.Model).Observe(duration.Seconds())

	if err != nil {
		return "", classifyCompletionError(err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrEmptyCompletion
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", domain.ErrEmptyCompletion
	}

	c.logger.Debug("Completion generated",
		zap.String("model", cfg.Model),
		zap.Duration("latency", duration),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return reply, nil
}

// toChatMessages converts assembled prompt messages to the wire format.
func toChatMessages(messages []domain.PromptMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Name:    m.Name,
			Content: m.Content,
		})
	}
	return out
}

// classifyCompletionError maps provider failures to domain errors.
func classifyCompletionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case isContextLengthError(apiErr):
			return fmt.Errorf("%s: %w", apiErr.Message, domain.ErrContextTooLong)
		case apiErr.HTTPStatusCode == 429:
			return domain.NewRateLimit(0)
		case apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500:
			return fmt.Errorf("%s: %w", apiErr.Message, domain.ErrInvalidRequest)
		default:
			return fmt.Errorf("completion API error %d: %s: %w",
				apiErr.HTTPStatusCode, apiErr.Message, domain.ErrCompletionProvider)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 {
			return domain.NewRateLimit(0)
		}
		return fmt.Errorf("completion API error %d: %w",
			reqErr.HTTPStatusCode, domain.ErrCompletionProvider)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, domain.ErrCompletionProvider)
}

// isContextLengthError detects the provider's context window rejection,
// which arrives as a generic 400.
func isContextLengthError(apiErr *openai.APIError) bool {
	if apiErr.HTTPStatusCode != 400 {
		return false
	}
	if apiErr.Code == "context_length_exceeded" {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "maximum context length") || strings.Contains(msg, "context window")
}
