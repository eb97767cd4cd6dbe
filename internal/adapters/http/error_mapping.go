package httpadapter

import (
	"net/http"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrInteractionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrNotInitialized),
		domain.IsKind(err, domain.ErrInitialization),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
