package usecase

import (
	"sort"
	"strings"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

// LexicalScorer ranks chunks by raw occurrence counts of query terms.
type LexicalScorer struct {
	MinTokenLength int
}

func NewLexicalScorer(minTokenLength int) LexicalScorer {
	if minTokenLength <= 0 {
		minTokenLength = 3
	}
	return LexicalScorer{MinTokenLength: minTokenLength}
}

// Score sums, over every significant query token, the number of non-overlapping
// case-insensitive occurrences of that token in chunk.
func (s LexicalScorer) Score(chunk, query string) int {
	return countOccurrences(strings.ToLower(chunk), significantTokens(query, s.MinTokenLength))
}

// Search returns up to topK chunks with a positive score, best first.
// Equal scores keep document order. topK <= 0 means no limit.
func (s LexicalScorer) Search(chunks []string, query string, topK int) []domain.RetrievedChunk {
	tokens := significantTokens(query, s.MinTokenLength)
	if len(tokens) == 0 {
		return []domain.RetrievedChunk{}
	}

	scored := make([]domain.RetrievedChunk, 0, len(chunks))
	for idx, chunk := range chunks {
		score := countOccurrences(strings.ToLower(chunk), tokens)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.RetrievedChunk{Index: idx, Text: chunk, Score: float64(score)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func countOccurrences(lowerChunk string, tokens []string) int {
	total := 0
	for _, token := range tokens {
		total += strings.Count(lowerChunk, token)
	}
	return total
}
