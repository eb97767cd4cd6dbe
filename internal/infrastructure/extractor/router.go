package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

// Router dispatches by file extension, then by MIME type.
type Router struct {
	byExtension map[string]ports.TextExtractor
	byMimeType  map[string]ports.TextExtractor
	fallback    ports.TextExtractor
}

func NewRouter(fallback ports.TextExtractor) *Router {
	return &Router{
		byExtension: make(map[string]ports.TextExtractor),
		byMimeType:  make(map[string]ports.TextExtractor),
		fallback:    fallback,
	}
}

// Register maps the extractor to extensions (".pdf") and MIME types ("application/pdf").
func (r *Router) Register(extractor ports.TextExtractor, kinds ...string) *Router {
	for _, kind := range kinds {
		kind = strings.ToLower(strings.TrimSpace(kind))
		switch {
		case kind == "":
		case strings.HasPrefix(kind, "."):
			r.byExtension[kind] = extractor
		default:
			r.byMimeType[kind] = extractor
		}
	}
	return r
}

func (r *Router) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("document is nil"))
	}
	return r.route(doc).Extract(ctx, doc)
}

func (r *Router) route(doc *domain.Document) ports.TextExtractor {
	if extractor, ok := r.byExtension[strings.ToLower(filepath.Ext(doc.Filename))]; ok {
		return extractor
	}
	mimeType := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if extractor, ok := r.byMimeType[mimeType]; ok {
		return extractor
	}
	return r.fallback
}
