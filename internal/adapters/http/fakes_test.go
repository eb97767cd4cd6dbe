package httpadapter

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/document-qa/internal/config"
	"github.com/kirillkom/document-qa/internal/core/domain"
)

type ingestFake struct {
	err error
}

func (f ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_file.txt",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "a", MimeType: "text/plain", StoragePath: "a", Status: domain.StatusReady}, nil
}

type questionsFake struct {
	err      error
	answer   *domain.Answer
	question string
}

func (f *questionsFake) Ask(_ context.Context, question string) (*domain.Interaction, *domain.Answer, error) {
	f.question = question
	if f.err != nil {
		return nil, nil, f.err
	}
	answer := f.answer
	if answer == nil {
		answer = &domain.Answer{Text: "Based on the document: ok.", Strategy: domain.StrategyExtractive, RetrievalMode: domain.RetrievalLexical}
	}
	interaction := &domain.Interaction{ID: "i-1", Question: question}
	interaction.ApplyAnswer(answer)
	return interaction, answer, nil
}

func (f *questionsFake) Submit(_ context.Context, question string) (*domain.Interaction, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Interaction{ID: "i-2", Question: question, Status: domain.InteractionPending}, nil
}

func (f *questionsFake) GetByID(_ context.Context, id string) (*domain.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Interaction{ID: id, Status: domain.InteractionAnswered, Answer: "done"}, nil
}

func (f *questionsFake) ProcessByID(context.Context, string) error { return f.err }

type answersFake struct {
	info domain.SessionInfo
}

func (f answersFake) Answer(context.Context, string) (*domain.Answer, error) {
	return &domain.Answer{}, nil
}

func (f answersFake) Status() domain.SessionInfo { return f.info }

func newTestRouter(cfg config.Config, questions *questionsFake) *Router {
	if questions == nil {
		questions = &questionsFake{}
	}
	return NewRouter(
		cfg,
		ingestFake{},
		docsFake{},
		questions,
		answersFake{info: domain.SessionInfo{DocumentID: "doc-1", Status: domain.SessionReady, Backend: "local", Chunks: 4, Indexed: true}},
	)
}
