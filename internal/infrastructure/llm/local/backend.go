// Package local is the CPU compute backend. It always loads, embeds with feature hashing
// and has no generator, so answers from it are extractive.
package local

import (
	"context"

	"github.com/kirillkom/document-qa/internal/core/ports"
	"github.com/kirillkom/document-qa/internal/infrastructure/embedding/hashing"
	"github.com/kirillkom/document-qa/internal/infrastructure/llm/absent"
)

const Name = "local"

type Backend struct {
	embedder *hashing.Embedder
}

func NewBackend(dimensions int) *Backend {
	return &Backend{embedder: hashing.New(dimensions)}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Load(ctx context.Context) error {
	return ctx.Err()
}

func (b *Backend) Embedder() ports.Embedder {
	return b.embedder
}

func (b *Backend) Generator() ports.Generator {
	return absent.Generator{Reason: "local backend has no generation model"}
}
