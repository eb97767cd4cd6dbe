package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

var errIndexUnavailable = errors.New("embedding index unavailable")

type retrievalStrategy struct {
	mode domain.RetrievalMode
	run  func(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}

// HybridRetriever ranks chunks by cosine similarity plus a lexical term boost and falls
// back to pure lexical search whenever the semantic path cannot run.
type HybridRetriever struct {
	chunks   []string
	index    *EmbeddingIndex
	embedder ports.Embedder
	lexical  LexicalScorer
	cfg      RetrievalConfig
	logger   *slog.Logger

	strategies []retrievalStrategy
}

func NewHybridRetriever(
	chunks []string,
	index *EmbeddingIndex,
	embedder ports.Embedder,
	cfg RetrievalConfig,
	logger *slog.Logger,
) *HybridRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	r := &HybridRetriever{
		chunks:   chunks,
		index:    index,
		embedder: embedder,
		lexical:  NewLexicalScorer(cfg.MinTokenLength),
		cfg:      cfg,
		logger:   logger,
	}
	r.strategies = []retrievalStrategy{
		{mode: domain.RetrievalSemantic, run: r.semantic},
		{mode: domain.RetrievalLexical, run: r.keyword},
	}
	return r
}

// Retrieve never fails: the last strategy is lexical search, which always produces a result.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, topK int) domain.Retrieval {
	if topK <= 0 {
		topK = r.cfg.TopK
	}
	for _, strategy := range r.strategies {
		chunks, err := strategy.run(ctx, query, topK)
		if err != nil {
			r.logger.Warn("retrieval_fallback", "mode", strategy.mode, "error", err)
			continue
		}
		return domain.Retrieval{Mode: strategy.mode, Chunks: chunks}
	}
	return domain.Retrieval{Mode: domain.RetrievalLexical, Chunks: []domain.RetrievedChunk{}}
}

func (r *HybridRetriever) Indexed() bool {
	return r.index.Len() > 0 && r.embedder != nil
}

// Candidates scores every chunk that clears the relevance threshold, in chunk order.
func (r *HybridRetriever) Candidates(ctx context.Context, query string) ([]domain.ScoredCandidate, error) {
	if !r.Indexed() {
		return nil, errIndexUnavailable
	}

	queryVector, err := r.embedder.Embed(ctx, query, domain.DefaultEmbedOptions)
	if err != nil {
		return nil, err
	}
	if len(queryVector) == 0 {
		return nil, errors.New("empty query embedding")
	}

	tokens := distinctTokens(significantTokens(query, r.lexical.MinTokenLength))
	candidates := make([]domain.ScoredCandidate, 0, len(r.chunks))
	for idx, chunk := range r.chunks {
		vector, err := r.index.Vector(idx)
		if err != nil {
			return nil, err
		}
		similarity := CosineSimilarity(queryVector, vector)
		// The boost never rescues a chunk below the similarity floor.
		if similarity < r.cfg.RelevanceThreshold {
			continue
		}
		boost := r.termBoost(strings.ToLower(chunk), tokens)
		candidates = append(candidates, domain.ScoredCandidate{
			Index:        idx,
			Text:         chunk,
			Similarity:   similarity,
			LexicalBoost: boost,
			Score:        similarity + boost,
		})
	}
	return candidates, nil
}

func (r *HybridRetriever) semantic(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	candidates, err := r.Candidates(ctx, query)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]domain.RetrievedChunk, 0, len(candidates))
	for _, candidate := range candidates {
		r.logger.Debug("chunk_similarity",
			"index", candidate.Index,
			"similarity", candidate.Similarity,
			"boosted", candidate.Score,
		)
		out = append(out, domain.RetrievedChunk{
			Index: candidate.Index,
			Text:  candidate.Text,
			Score: candidate.Score,
		})
	}
	return out, nil
}

func (r *HybridRetriever) keyword(_ context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	return r.lexical.Search(r.chunks, query, topK), nil
}

func (r *HybridRetriever) termBoost(lowerChunk string, tokens []string) float64 {
	hits := 0
	for _, token := range tokens {
		if strings.Contains(lowerChunk, token) {
			hits++
		}
	}
	return r.cfg.TermBoost * float64(hits)
}
