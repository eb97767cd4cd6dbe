package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

const maxStoredNameLength = 96

// IngestDocumentUseCase accepts source documents and announces them on the queue.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	logger  *slog.Logger
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *IngestDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		logger:  logger,
	}
}

// Upload stores the document under documents/<id>/, records it and publishes
// documents.loaded so every process reloads its session. A document whose event cannot
// be published is marked failed so it is never picked up as the latest one.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	const op = "upload document"

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, errors.New("filename is required"))
	}
	if !domain.IsSupportedDocument(filename, mimeType) {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("unsupported document type %q", filepath.Ext(filename)))
	}
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, errors.New("document body is required"))
	}
	content := bufio.NewReader(body)
	if _, err := content.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.WrapError(domain.ErrInvalidInput, op, errors.New("document is empty"))
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: path.Join("documents", id, storedName(filename)),
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.storage.Save(ctx, doc.StoragePath, content); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentLoaded(ctx, doc.ID); err != nil {
		if markErr := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "publish document event: "+err.Error()); markErr != nil {
			uc.logger.Warn("document_status_update_failed", "document_id", doc.ID, "error", markErr)
		}
		return nil, fmt.Errorf("publish document event: %w", err)
	}

	uc.logger.Info("document_uploaded", "document_id", doc.ID, "filename", filename, "mime_type", mimeType)
	return doc, nil
}

func (uc *IngestDocumentUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", errors.New("id is required"))
	}
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// storedName keeps letters and digits of any script plus '.', '-' and '_'. Other runs of
// characters collapse to one '_'. The extension is lowercased and kept when the name is
// shortened.
func storedName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !cleanExtension(ext) {
		ext, stem = "", base
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		clean = "document"
	}
	if runes := []rune(clean); len(runes) > maxStoredNameLength {
		clean = string(runes[:maxStoredNameLength])
	}
	return clean + ext
}

func cleanExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
