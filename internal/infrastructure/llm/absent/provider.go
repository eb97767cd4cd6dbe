// Package absent provides embedding and generation variants for compute targets that lack them.
package absent

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

type Embedder struct {
	Reason string
}

func (e Embedder) Embed(context.Context, string, domain.EmbedOptions) ([]float32, error) {
	return nil, unavailable("embedder", e.Reason)
}

type Generator struct {
	Reason string
}

func (g Generator) Generate(context.Context, string, domain.GenerateOptions) (string, error) {
	return "", unavailable("generator", g.Reason)
}

func unavailable(kind, reason string) error {
	if reason == "" {
		return fmt.Errorf("%s: %w", kind, domain.ErrProviderUnavailable)
	}
	return fmt.Errorf("%s: %w: %s", kind, domain.ErrProviderUnavailable, reason)
}
