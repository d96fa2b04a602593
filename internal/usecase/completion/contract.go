package completion

import (
	"context"

	"github.com/prof-ramos/sherlock/internal/domain"
)

// Retriever supplies context documents for a query. Best effort: an empty
// slice means no context, never an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string) []domain.RankedResult
}

// Generator runs one chat completion against the provider.
type Generator interface {
	Generate(ctx context.Context, messages []domain.PromptMessage, cfg domain.GenerationConfig) (string, error)
}

// Cache stores finished outcomes keyed by request fingerprint.
type Cache interface {
	Get(key string) (domain.Outcome, bool)
	Put(key string, outcome domain.Outcome)
}
