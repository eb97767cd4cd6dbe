// Package extractor selects a text extractor per document type and substitutes the built-in
// sample text when extraction yields nothing.
package extractor

import (
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

// ReadSource loads the raw bytes of a stored document.
func ReadSource(ctx context.Context, storage ports.ObjectStorage, doc *domain.Document) ([]byte, error) {
	reader, err := storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	return raw, nil
}
