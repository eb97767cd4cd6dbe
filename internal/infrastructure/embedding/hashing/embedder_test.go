package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestEmbedDeterministicAndNormalized(t *testing.T) {
	e := New(64)

	v1, err := e.Embed(context.Background(), "Refund policy for DOC_0001", domain.DefaultEmbedOptions)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	v2, _ := e.Embed(context.Background(), "refund POLICY for doc 0001", domain.DefaultEmbedOptions)

	if len(v1) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(v1))
	}
	if math.Abs(dot(v1, v1)-1) > 1e-5 {
		t.Fatalf("expected unit norm, got %v", dot(v1, v1))
	}
	if math.Abs(dot(v1, v2)-1) > 1e-5 {
		t.Fatalf("expected identical token bags to embed identically, got %v", dot(v1, v2))
	}
}

func TestEmbedSharedTokensAreSimilar(t *testing.T) {
	e := New(DefaultDimensions)
	opts := domain.DefaultEmbedOptions

	query, _ := e.Embed(context.Background(), "capital of Frantzland", opts)
	related, _ := e.Embed(context.Background(), "The capital of Frantzland is Sorimo", opts)
	unrelated, _ := e.Embed(context.Background(), "bananas grow in warm climates", opts)

	if dot(query, related) <= dot(query, unrelated) {
		t.Fatalf("expected related text to score higher: %v <= %v", dot(query, related), dot(query, unrelated))
	}
}

func TestEmbedEmptyTextIsZeroVector(t *testing.T) {
	e := New(8)

	v, err := e.Embed(context.Background(), "  ---  ", domain.DefaultEmbedOptions)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	for _, x := range v {
		if x != 0 {
			t.Fatalf("expected zero vector, got %v", v)
		}
	}
}

func TestTokenizeKeepsUnicodeLetters(t *testing.T) {
	tokens := tokenize("Привет DOC_0001 версия-2")
	want := []string{"привет", "doc", "0001", "версия", "2"}
	if len(tokens) != len(want) {
		t.Fatalf("tokenize() = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokenize() = %v, want %v", tokens, want)
		}
	}
}
