package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/db"
	"github.com/prof-ramos/sherlock/internal/domain"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches query embeddings in the key-value store so repeated
// retrieval queries skip the provider round-trip. Store failures degrade to
// a miss; they never fail the embedding call.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. A zero ttl keeps entries forever.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix + "emb_cache:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec := c.lookup(ctx, key); vec != nil {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	if err := c.write(ctx, key, result.Embedding); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

// lookup fetches and decodes a cached vector. Any failure (absent key,
// store error, corrupt payload) reads as a miss.
func (c *CachedEmbedder) lookup(ctx context.Context, key string) []float32 {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil
	case err != nil:
		c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		return nil
	case len(data) == 0:
		return nil
	}

	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil
	}
	return vec
}

func (c *CachedEmbedder) write(ctx context.Context, key string, vec []float32) error {
	data := encodeVector(vec)
	if c.ttl > 0 {
		return c.store.SetWithTTL(ctx, key, data, c.ttl)
	}
	return c.store.Set(ctx, key, data)
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// Vectors are stored as packed little-endian float32s, the same layout
// the corpus index expects for KNN query blobs.

func encodeVector(v []float32) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
