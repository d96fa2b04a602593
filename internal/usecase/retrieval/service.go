package retrieval

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/metrics"
	"github.com/prof-ramos/sherlock/internal/repository/corpus"
)

// searcher is the consumer interface over the corpus repository (ISP).
type searcher interface {
	VectorSearch(ctx context.Context, vector []float32, limit int) ([]corpus.Hit, error)
	KeywordSearch(ctx context.Context, query string, limit int) ([]corpus.Hit, error)
}

// Config holds retrieval tuning parameters.
type Config struct {
	// TopK is the number of fused results returned per query.
	TopK int
	// OverfetchFactor multiplies TopK for each backend search so fusion
	// has candidates beyond the final cut.
	OverfetchFactor int
}

// Service runs hybrid retrieval: a vector KNN search and a keyword search
// over the same corpus, merged with reciprocal rank fusion. Retrieval is a
// best-effort enrichment step: a failing side degrades to the other side's
// results, and a total failure degrades to no context. Retrieve never
// returns an error.
type Service struct {
	embedder domain.Embedder
	searcher searcher
	cfg      Config
	logger   *zap.Logger
}

// New creates the retrieval service.
func New(embedder domain.Embedder, s searcher, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.OverfetchFactor <= 0 {
		cfg.OverfetchFactor = 2
	}
	return &Service{
		embedder: embedder,
		searcher: s,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve returns the fused top-K context documents for a query.
func (s *Service) Retrieve(ctx context.Context, query string) []domain.RankedResult {
	start := time.Now()
	defer func() {
		metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	}()

	limit := s.cfg.TopK * s.cfg.OverfetchFactor

	vectorHits := s.vectorSide(ctx, query, limit)
	keywordHits := s.keywordSide(ctx, query, limit)

	results := fuseRRF(vectorHits, keywordHits, s.cfg.TopK)

	s.logger.Debug("Retrieval complete",
		zap.Int("vector_hits", len(vectorHits)),
		zap.Int("keyword_hits", len(keywordHits)),
		zap.Int("fused", len(results)),
	)
	return results
}

// vectorSide embeds the query and runs the KNN search. Any failure on this
// path (embedding or search) drops the vector side entirely.
func (s *Service) vectorSide(ctx context.Context, query string, limit int) []corpus.Hit {
	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.degrade("vector", "embed query", err)
		return nil
	}
	if len(emb.Embedding) == 0 {
		s.degrade("vector", "embed query", errEmptyVector)
		return nil
	}

	hits, err := s.searcher.VectorSearch(ctx, emb.Embedding, limit)
	if err != nil {
		s.degrade("vector", "vector search", err)
		return nil
	}
	return hits
}

func (s *Service) keywordSide(ctx context.Context, query string, limit int) []corpus.Hit {
	hits, err := s.searcher.KeywordSearch(ctx, query, limit)
	if err != nil {
		s.degrade("keyword", "keyword search", err)
		return nil
	}
	return hits
}

func (s *Service) degrade(side, stage string, err error) {
	metrics.RetrievalDegradationsTotal.WithLabelValues(side).Inc()
	s.logger.Warn("Retrieval side degraded",
		zap.String("side", side), zap.String("stage", stage), zap.Error(err))
}

var errEmptyVector = errors.New("embedding provider returned an empty vector")
