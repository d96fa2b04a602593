package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/repository/corpus"
)

type stubEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return s.result, s.err
}

type stubSearcher struct {
	vectorHits  []corpus.Hit
	vectorErr   error
	keywordHits []corpus.Hit
	keywordErr  error

	vectorLimit  int
	keywordLimit int
}

func (s *stubSearcher) VectorSearch(_ context.Context, _ []float32, limit int) ([]corpus.Hit, error) {
	s.vectorLimit = limit
	return s.vectorHits, s.vectorErr
}

func (s *stubSearcher) KeywordSearch(_ context.Context, _ string, limit int) ([]corpus.Hit, error) {
	s.keywordLimit = limit
	return s.keywordHits, s.keywordErr
}

func newTestService(emb *stubEmbedder, sr *stubSearcher, topK int) *Service {
	return New(emb, sr, Config{TopK: topK, OverfetchFactor: 2}, zap.NewNop())
}

func TestRetrieve_HappyPath(t *testing.T) {
	emb := &stubEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	sr := &stubSearcher{
		vectorHits:  []corpus.Hit{hit("A", "alpha", 0.1), hit("B", "beta", 0.2)},
		keywordHits: []corpus.Hit{hit("B", "beta", 9.0), hit("A", "alpha", 8.0), hit("C", "gamma", 7.0)},
	}
	svc := newTestService(emb, sr, 5)

	results := svc.Retrieve(context.Background(), "what is beta")

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Document.ID != "A" || results[1].Document.ID != "B" || results[2].Document.ID != "C" {
		t.Fatalf("unexpected order: %s, %s, %s",
			results[0].Document.ID, results[1].Document.ID, results[2].Document.ID)
	}
}

func TestRetrieve_OverfetchLimit(t *testing.T) {
	emb := &stubEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	sr := &stubSearcher{}
	svc := newTestService(emb, sr, 5)

	svc.Retrieve(context.Background(), "query")

	if sr.vectorLimit != 10 {
		t.Errorf("vector limit = %d, want topK*factor = 10", sr.vectorLimit)
	}
	if sr.keywordLimit != 10 {
		t.Errorf("keyword limit = %d, want topK*factor = 10", sr.keywordLimit)
	}
}

func TestRetrieve_EmbeddingFailureDegradesToKeyword(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("provider down")}
	sr := &stubSearcher{
		keywordHits: []corpus.Hit{hit("K", "keyword only", 5.0)},
	}
	svc := newTestService(emb, sr, 5)

	results := svc.Retrieve(context.Background(), "query")

	if len(results) != 1 || results[0].Document.ID != "K" {
		t.Fatalf("expected keyword-only result, got %+v", results)
	}
	if results[0].VectorRank != 0 {
		t.Errorf("expected zero vector rank, got %d", results[0].VectorRank)
	}
}

func TestRetrieve_KeywordFailureDegradesToVector(t *testing.T) {
	emb := &stubEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	sr := &stubSearcher{
		vectorHits: []corpus.Hit{hit("V", "vector only", 0.1)},
		keywordErr: errors.New("index offline"),
	}
	svc := newTestService(emb, sr, 5)

	results := svc.Retrieve(context.Background(), "query")

	if len(results) != 1 || results[0].Document.ID != "V" {
		t.Fatalf("expected vector-only result, got %+v", results)
	}
}

func TestRetrieve_TotalFailureReturnsEmpty(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("provider down")}
	sr := &stubSearcher{keywordErr: errors.New("index offline")}
	svc := newTestService(emb, sr, 5)

	results := svc.Retrieve(context.Background(), "query")
	if len(results) != 0 {
		t.Fatalf("expected empty results on total failure, got %d", len(results))
	}
}

func TestRetrieve_EmptyVectorDegrades(t *testing.T) {
	emb := &stubEmbedder{result: domain.EmbeddingResult{}}
	sr := &stubSearcher{
		keywordHits: []corpus.Hit{hit("K", "keyword", 5.0)},
	}
	svc := newTestService(emb, sr, 5)

	results := svc.Retrieve(context.Background(), "query")
	if len(results) != 1 || results[0].Document.ID != "K" {
		t.Fatalf("expected keyword-only result, got %+v", results)
	}
	if sr.vectorLimit != 0 {
		t.Error("vector search should not run with an empty embedding")
	}
}
