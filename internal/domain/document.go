package domain

// Document is an immutable corpus entry. Documents are created during
// ingestion and are read-only to the completion pipeline. The embedding
// dimension is fixed and identical across the corpus.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// RankedResult is a per-query fusion candidate. A rank of zero means the
// document did not appear in that result set.
type RankedResult struct {
	Document    Document
	VectorRank  int
	KeywordRank int
	FusedScore  float64
}
