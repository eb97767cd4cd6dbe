package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

// EmbeddingIndex holds one vector per chunk, aligned by position.
type EmbeddingIndex struct {
	vectors [][]float32
}

// BuildEmbeddingIndex embeds chunks one at a time. A failed chunk gets a zero vector so
// the index stays aligned with the chunk list. It returns an error only when the context
// is done or the embedder reports domain.ErrProviderUnavailable.
func BuildEmbeddingIndex(
	ctx context.Context,
	embedder ports.Embedder,
	chunks []string,
	cfg IndexConfig,
	logger *slog.Logger,
	metrics ports.PipelineMetrics,
) (*EmbeddingIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	progressEvery := cfg.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 10
	}

	vectors := make([][]float32, len(chunks))
	failed := make([]int, 0)
	dimensions := 0

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := embedder.Embed(ctx, chunk, domain.DefaultEmbedOptions)
		if err == nil && len(vector) == 0 {
			err = errors.New("empty embedding")
		}
		switch {
		case err == nil:
			if dimensions == 0 {
				dimensions = len(vector)
			}
			vectors[i] = vector
		case errors.Is(err, domain.ErrProviderUnavailable):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			logger.Warn("chunk_embedding_failed", "chunk", i, "error", err)
			metrics.ObserveEmbeddingFailure()
			failed = append(failed, i)
		}

		if (i+1)%progressEvery == 0 {
			logger.Info("embedding_progress", "computed", i+1, "total", len(chunks))
		}
	}

	if dimensions == 0 {
		dimensions = cfg.Dimensions
	}
	if dimensions <= 0 {
		dimensions = 384
	}
	for _, i := range failed {
		vectors[i] = make([]float32, dimensions)
	}

	logger.Info("embeddings_computed", "chunks", len(chunks), "failed", len(failed), "dimensions", dimensions)
	return &EmbeddingIndex{vectors: vectors}, nil
}

func (ix *EmbeddingIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.vectors)
}

func (ix *EmbeddingIndex) Vector(i int) ([]float32, error) {
	if ix == nil || i < 0 || i >= len(ix.vectors) {
		return nil, fmt.Errorf("embedding index: position %d out of range", i)
	}
	return ix.vectors[i], nil
}

// CosineSimilarity returns 0 for vectors of different length or with zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}
