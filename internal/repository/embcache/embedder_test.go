package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/db"
	"github.com/prof-ramos/sherlock/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	setTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setTTLFn != nil {
		return m.setTTLFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, "sherlock:", 0, nil, zap.NewNop())
	return ce, ms
}

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !setCalled {
		t.Fatal("expected SET to be called for cache put")
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	cached := encodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Fatalf("inner embedder should not be called on hit, got %d calls", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, _ := newTestCachedEmbedder(t, inner)

	if _, err := ce.Embed(context.Background(), "test text"); err == nil {
		t.Fatal("expected error from inner embedder")
	}
}

func TestEmbed_StoreErrorDegradesToMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.7},
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("store unavailable")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return errors.New("store unavailable")
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 1 || result.Embedding[0] != 0.7 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
}

func TestEmbed_CorruptCacheDataFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.9},
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil // not a multiple of 4
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected fall-through to inner embedder, got %d calls", inner.calls)
	}
	if result.Embedding[0] != 0.9 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
}

func TestEmbed_TTLUsedWhenConfigured(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1},
	}}
	ms := &mockKVStore{}
	ce := New(inner, ms, "sherlock:", 24*time.Hour, nil, zap.NewNop())

	var gotTTL time.Duration
	var setCalled bool
	ms.setTTLFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	if _, err := ce.Embed(context.Background(), "test text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 24*time.Hour {
		t.Fatalf("expected SET with 24h TTL, got %s", gotTTL)
	}
	if setCalled {
		t.Fatal("plain SET must not be used when a TTL is configured")
	}
}

func TestCacheKey_Stable(t *testing.T) {
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{})
	k1 := ce.cacheKey("hello")
	k2 := ce.cacheKey("hello")
	k3 := ce.cacheKey("world")
	if k1 != k2 {
		t.Error("same text must produce the same cache key")
	}
	if k1 == k3 {
		t.Error("different texts must produce different cache keys")
	}
}
