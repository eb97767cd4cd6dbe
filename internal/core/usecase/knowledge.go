package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

// SessionFactory builds an uninitialized session for one document.
type SessionFactory func(documentID string) *AnswerOrchestrator

// KnowledgeBase keeps the answering session of the currently loaded document.
// A new document gets a fresh session; the previous one keeps serving until the new one is ready.
type KnowledgeBase struct {
	extractor  ports.TextExtractor
	chunker    ports.Chunker
	newSession SessionFactory
	logger     *slog.Logger

	mu      sync.RWMutex
	current *AnswerOrchestrator
}

func NewKnowledgeBase(
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	newSession SessionFactory,
	logger *slog.Logger,
) *KnowledgeBase {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeBase{
		extractor:  extractor,
		chunker:    chunker,
		newSession: newSession,
		logger:     logger,
	}
}

// Load extracts the document text and initializes a session over its chunks.
// It returns the number of chunks.
func (kb *KnowledgeBase) Load(ctx context.Context, doc *domain.Document) (int, error) {
	if doc == nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "load document", errors.New("document is nil"))
	}
	text, err := kb.extractor.Extract(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}
	return kb.LoadText(ctx, doc.ID, text)
}

func (kb *KnowledgeBase) LoadText(ctx context.Context, documentID, text string) (int, error) {
	chunks := kb.chunker.Split(strings.TrimSpace(text))
	session := kb.newSession(documentID)

	if err := session.Initialize(ctx, chunks); err != nil {
		kb.mu.Lock()
		if kb.current == nil || kb.current.State() != domain.SessionReady {
			kb.current = session
		}
		kb.mu.Unlock()
		return 0, err
	}

	kb.mu.Lock()
	kb.current = session
	kb.mu.Unlock()

	kb.logger.Info("knowledge_base_loaded", "document_id", documentID, "chunks", len(chunks))
	return len(chunks), nil
}

func (kb *KnowledgeBase) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	session := kb.Current()
	if session == nil {
		return nil, fmt.Errorf("generate response: %w", domain.ErrNotInitialized)
	}
	return session.Answer(ctx, question)
}

func (kb *KnowledgeBase) Status() domain.SessionInfo {
	session := kb.Current()
	if session == nil {
		return domain.SessionInfo{Status: domain.SessionUninitialized}
	}
	return session.Status()
}

func (kb *KnowledgeBase) Current() *AnswerOrchestrator {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.current
}
