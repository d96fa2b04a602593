package db

import (
	"context"
	"time"
)

// Store is the corpus store facade combining all sub-interfaces.
// Consumers use the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	KVStore
	HashStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HashStore provides hash-based document access.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Searcher provides search operations over the corpus FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index string) (int, error)
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName    string
	Query        string
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For KNN searches the
// score is the cosine distance (ascending = closer); for text searches it
// is the BM25 relevance (descending = more relevant).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
