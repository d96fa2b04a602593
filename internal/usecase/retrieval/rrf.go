package retrieval

import (
	"sort"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/repository/corpus"
)

// rrfK is the reciprocal rank fusion constant. Candidate scores are
// sums of 1/(rrfK+rank) over the result lists a document appears in.
const rrfK = 60

// fuseRRF merges the vector and keyword result lists with reciprocal rank
// fusion. Ranks are 1-based list positions; a document absent from a list
// contributes nothing from that list. Ties break by document ID ascending
// so results are deterministic across runs.
func fuseRRF(vectorHits, keywordHits []corpus.Hit, topK int) []domain.RankedResult {
	candidates := make(map[string]*domain.RankedResult)

	for i, hit := range vectorHits {
		candidates[hit.Document.ID] = &domain.RankedResult{
			Document:   hit.Document,
			VectorRank: i + 1,
		}
	}

	for i, hit := range keywordHits {
		if c, ok := candidates[hit.Document.ID]; ok {
			c.KeywordRank = i + 1
			// Vector hits omit metadata when the keyword side has it.
			if c.Document.Content == "" {
				c.Document.Content = hit.Document.Content
			}
			continue
		}
		candidates[hit.Document.ID] = &domain.RankedResult{
			Document:    hit.Document,
			KeywordRank: i + 1,
		}
	}

	results := make([]domain.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		c.FusedScore = rrfScore(c.VectorRank) + rrfScore(c.KeywordRank)
		results = append(results, *c)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

func rrfScore(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return 1.0 / float64(rrfK+rank)
}
