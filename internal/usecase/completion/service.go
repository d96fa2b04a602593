package completion

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/metrics"
	"github.com/prof-ramos/sherlock/internal/usecase/respcache"
)

// Service orchestrates one completion pass: response cache lookup, context
// retrieval, prompt assembly, provider call, and outcome mapping. Complete
// never returns an error; every failure becomes a typed outcome the
// dispatcher can act on.
type Service struct {
	retriever Retriever
	generator Generator
	cache     Cache
	persona   Persona
	genCfg    domain.GenerationConfig
	logger    *zap.Logger
}

// New creates the orchestrator.
func New(
	retriever Retriever,
	generator Generator,
	cache Cache,
	persona Persona,
	genCfg domain.GenerationConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		cache:     cache,
		persona:   persona,
		genCfg:    genCfg,
		logger:    logger,
	}
}

// Complete produces an outcome for the given conversation snapshot.
func (s *Service) Complete(ctx context.Context, snapshot domain.Snapshot) domain.Outcome {
	key := respcache.Key(snapshot, s.genCfg)
	if outcome, ok := s.cache.Get(key); ok {
		s.logger.Debug("Response cache hit",
			zap.String("conversation_id", snapshot.ConversationID))
		s.observe(outcome)
		return outcome
	}

	results := s.retrieveContext(ctx, snapshot)

	messages := buildPrompt(s.persona, s.genCfg.Provider, results, snapshot)

	reply, err := s.generator.Generate(ctx, messages, s.genCfg)
	outcome := s.mapOutcome(reply, err)

	if outcome.Status == domain.StatusOK {
		s.cache.Put(key, outcome)
	}

	s.observe(outcome)
	return outcome
}

// retrieveContext runs retrieval on the latest user turn. No user turn
// means nothing to retrieve for.
func (s *Service) retrieveContext(ctx context.Context, snapshot domain.Snapshot) []domain.RankedResult {
	lastUser, ok := snapshot.LastUserTurn()
	if !ok || lastUser.Text == "" {
		return nil
	}
	return s.retriever.Retrieve(ctx, lastUser.Text)
}

// mapOutcome classifies a generation result into a typed outcome.
func (s *Service) mapOutcome(reply string, err error) domain.Outcome {
	if err == nil {
		return domain.OK(reply)
	}

	var rateErr *domain.RateLimitError
	switch {
	case errors.Is(err, domain.ErrContextTooLong):
		return domain.Outcome{Status: domain.StatusTooLong, Detail: err.Error()}
	case errors.As(err, &rateErr):
		return domain.Outcome{
			Status:     domain.StatusRateLimited,
			Detail:     err.Error(),
			RetryAfter: rateErr.RetryAfter,
		}
	case errors.Is(err, domain.ErrRateLimited):
		return domain.Outcome{Status: domain.StatusRateLimited, Detail: err.Error()}
	case errors.Is(err, domain.ErrInvalidRequest):
		return domain.Outcome{Status: domain.StatusInvalidRequest, Detail: err.Error()}
	default:
		s.logger.Error("Completion failed", zap.Error(err))
		return domain.Outcome{Status: domain.StatusError, Detail: err.Error()}
	}
}

func (s *Service) observe(outcome domain.Outcome) {
	metrics.CompletionRequestsTotal.WithLabelValues(s.genCfg.Model, outcome.Status.String()).Inc()
}
