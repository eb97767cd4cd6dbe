package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

// AnswerService answers questions against the currently loaded document.
type AnswerService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
	Status() domain.SessionInfo
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentLoader (re)builds the answering session from a stored document.
type DocumentLoader interface {
	LoadByID(ctx context.Context, documentID string) error
	LoadLatest(ctx context.Context) error
}

// QuestionService handles synchronous answers with audit logging and queued questions.
type QuestionService interface {
	Ask(ctx context.Context, question string) (*domain.Interaction, *domain.Answer, error)
	Submit(ctx context.Context, question string) (*domain.Interaction, error)
	GetByID(ctx context.Context, id string) (*domain.Interaction, error)
	ProcessByID(ctx context.Context, interactionID string) error
}
