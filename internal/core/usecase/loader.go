package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

// SampleDocumentID identifies the built-in sample text loaded when no document exists.
const SampleDocumentID = "sample"

type DocumentLoaderUseCase struct {
	repo       ports.DocumentRepository
	kb         *KnowledgeBase
	sampleText string
	logger     *slog.Logger
}

func NewDocumentLoaderUseCase(
	repo ports.DocumentRepository,
	kb *KnowledgeBase,
	sampleText string,
	logger *slog.Logger,
) *DocumentLoaderUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentLoaderUseCase{
		repo:       repo,
		kb:         kb,
		sampleText: sampleText,
		logger:     logger,
	}
}

func (uc *DocumentLoaderUseCase) LoadByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusLoading, ""); err != nil {
		return fmt.Errorf("set status=loading: %w", err)
	}

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return uc.fail(ctx, documentID, fmt.Errorf("fetch document by id: %w", err))
	}

	chunks, err := uc.kb.Load(ctx, doc)
	if err != nil {
		return uc.fail(ctx, documentID, fmt.Errorf("load knowledge base: %w", err))
	}

	if err := uc.repo.MarkReady(ctx, documentID, chunks); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

// LoadLatest loads the most recent document, or the sample text when none was uploaded yet.
func (uc *DocumentLoaderUseCase) LoadLatest(ctx context.Context) error {
	doc, err := uc.repo.Latest(ctx)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		uc.logger.Info("no_documents_loading_sample")
		if _, err := uc.kb.LoadText(ctx, SampleDocumentID, uc.sampleText); err != nil {
			return fmt.Errorf("load sample text: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("fetch latest document: %w", err)
	}

	if doc.Status != domain.StatusReady {
		return uc.LoadByID(ctx, doc.ID)
	}
	if _, err := uc.kb.Load(ctx, doc); err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	return nil
}

func (uc *DocumentLoaderUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *DocumentLoaderUseCase) fail(ctx context.Context, documentID string, loadErr error) error {
	if failErr := uc.markStatus(ctx, documentID, domain.StatusFailed, loadErr.Error()); failErr != nil {
		return fmt.Errorf("%w; mark failed status: %v", loadErr, failErr)
	}
	return loadErr
}
