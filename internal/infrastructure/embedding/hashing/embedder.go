package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

const DefaultDimensions = 384

// Embedder is a deterministic CPU embedder: every token is hashed into one of
// Dimensions signed buckets and the token vectors are pooled.
type Embedder struct {
	dimensions int
}

func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func (e *Embedder) Embed(ctx context.Context, text string, opts domain.EmbedOptions) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float64, e.dimensions)
	tokens := tokenize(text)
	for _, token := range tokens {
		bucket, sign := e.bucket(token)
		vector[bucket] += sign
	}

	if opts.Pooling == "mean" && len(tokens) > 0 {
		for i := range vector {
			vector[i] /= float64(len(tokens))
		}
	}
	if opts.Normalize {
		normalize(vector)
	}

	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out, nil
}

func (e *Embedder) bucket(token string) (int, float64) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum32()

	sign := 1.0
	if sum&(1<<31) != 0 {
		sign = -1.0
	}
	return int(sum % uint32(e.dimensions)), sign
}

func normalize(vector []float64) {
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] /= norm
	}
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
