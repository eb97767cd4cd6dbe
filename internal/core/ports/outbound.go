package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

// DocumentRepository persists and reads source document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Latest(ctx context.Context) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	MarkReady(ctx context.Context, id string, chunks int) error
}

// InteractionRepository is the question/answer audit log.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
	GetByID(ctx context.Context, id string) (*domain.Interaction, error)
	Complete(ctx context.Context, interaction *domain.Interaction) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue fans out document reloads and distributes queued questions.
type MessageQueue interface {
	PublishDocumentLoaded(ctx context.Context, documentID string) error
	SubscribeDocumentLoaded(ctx context.Context, handler func(context.Context, string) error) error
	PublishQuestion(ctx context.Context, interactionID string) error
	SubscribeQuestions(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits text into retrieval units.
type Chunker interface {
	Split(text string) []string
}

// Embedder turns one text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string, opts domain.EmbedOptions) ([]float32, error)
}

// Generator completes a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}

// ComputeBackend supplies embedding and generation on one compute target.
// Load fails when the backend cannot serve at all; the caller then tries the next backend.
// Missing capabilities are represented by variants returning domain.ErrProviderUnavailable.
type ComputeBackend interface {
	Name() string
	Load(ctx context.Context) error
	Embedder() Embedder
	Generator() Generator
}

// PipelineMetrics receives answering pipeline observations.
type PipelineMetrics interface {
	ObserveInitialization(backend string, status domain.SessionStatus, chunks int, duration time.Duration)
	ObserveEmbeddingFailure()
	ObserveRetrieval(mode domain.RetrievalMode, chunks int)
	ObserveFallback(reason string)
	ObserveAnswer(strategy domain.AnswerStrategy, duration time.Duration)
}
