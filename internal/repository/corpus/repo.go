package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prof-ramos/sherlock/internal/db"
	"github.com/prof-ramos/sherlock/internal/domain"
)

// Document hash field names in the corpus index. Everything else in the
// hash is treated as metadata written at ingestion time.
const (
	fieldContent     = "__content"
	fieldVector      = "__vector"
	fieldVectorScore = "__vector_score"
)

// store is the consumer interface for corpus operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string) (int, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Hit is a single search hit: the document plus the backend score
// (cosine distance for vector search, BM25 relevance for keyword search).
// Hits arrive already ordered by the backend; rank is positional.
type Hit struct {
	Document domain.Document
	Score    float64
}

// Repo reads the corpus index populated by the ingestion tooling.
// The completion pipeline never writes to it.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a corpus repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "doc:idx"
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + "doc:" + id
}

// VectorSearch returns up to limit documents ordered by ascending cosine
// distance to the query vector. A missing index means an empty corpus, not
// an error.
func (r *Repo) VectorSearch(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{fieldContent},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return r.parseHits(sr), nil
}

// KeywordSearch returns up to limit documents ordered by descending BM25
// relevance for the raw query text. A missing index means an empty corpus,
// not an error.
func (r *Repo) KeywordSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        query,
		TopK:         limit,
		ReturnFields: []string{fieldContent},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return r.parseHits(sr), nil
}

// GetDocument fetches a single document with content and metadata by id.
func (r *Repo) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	fields, err := r.store.HGetAll(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Document{}, fmt.Errorf("document %s: %w", id, db.ErrKeyNotFound)
		}
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return docFromFields(id, fields), nil
}

// Count returns the number of documents in the corpus index.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName())
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *Repo) parseHits(sr *db.SearchResult) []Hit {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := r.keyPrefix + "doc:"
	hits := make([]Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		hits = append(hits, Hit{
			Document: docFromFields(id, entry.Fields),
			Score:    entry.Score,
		})
	}
	return hits
}

func docFromFields(id string, fields map[string]string) domain.Document {
	doc := domain.Document{ID: id}
	var metadata map[string]string
	for k, v := range fields {
		switch k {
		case fieldContent:
			doc.Content = v
		case fieldVector, fieldVectorScore:
			// raw vector bytes are never surfaced to the pipeline
		default:
			if metadata == nil {
				metadata = make(map[string]string)
			}
			metadata[k] = v
		}
	}
	doc.Metadata = metadata
	return doc
}
