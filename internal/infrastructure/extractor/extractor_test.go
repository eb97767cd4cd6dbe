package extractor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

type staticExtractor struct {
	text  string
	err   error
	calls int
}

func (s *staticExtractor) Extract(context.Context, *domain.Document) (string, error) {
	s.calls++
	return s.text, s.err
}

type memoryStorage struct {
	files map[string][]byte
}

func (m *memoryStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.files[key] = raw
	return nil
}

func (m *memoryStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := m.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func TestRouterDispatchesByExtensionThenMimeType(t *testing.T) {
	fallback := &staticExtractor{text: "plain"}
	pdf := &staticExtractor{text: "pdf"}
	markdown := &staticExtractor{text: "markdown"}

	router := NewRouter(fallback).
		Register(pdf, ".pdf", "application/pdf").
		Register(markdown, ".MD", "text/markdown")

	cases := []struct {
		name string
		doc  *domain.Document
		want string
	}{
		{name: "extension", doc: &domain.Document{Filename: "report.PDF"}, want: "pdf"},
		{name: "extension case folded on register", doc: &domain.Document{Filename: "notes.md"}, want: "markdown"},
		{name: "mime with parameters", doc: &domain.Document{Filename: "upload", MimeType: "text/markdown; charset=utf-8"}, want: "markdown"},
		{name: "unknown", doc: &domain.Document{Filename: "notes.txt", MimeType: "text/plain"}, want: "plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := router.Extract(context.Background(), tc.doc)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Extract() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRouterRejectsNilDocument(t *testing.T) {
	router := NewRouter(&staticExtractor{})
	if _, err := router.Extract(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSampleFallback(t *testing.T) {
	doc := &domain.Document{ID: "doc-1", Filename: "broken.pdf"}

	t.Run("passes text through", func(t *testing.T) {
		got, err := WithSampleFallback(&staticExtractor{text: "real text"}, nil).Extract(context.Background(), doc)
		if err != nil || got != "real text" {
			t.Fatalf("Extract() = %q, %v", got, err)
		}
	})

	t.Run("extraction error", func(t *testing.T) {
		got, err := WithSampleFallback(&staticExtractor{err: errors.New("corrupt")}, nil).Extract(context.Background(), doc)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if got != SampleText {
			t.Fatalf("expected sample text, got %q", got)
		}
	})

	t.Run("blank text", func(t *testing.T) {
		got, _ := WithSampleFallback(&staticExtractor{text: " \n\t"}, nil).Extract(context.Background(), doc)
		if got != SampleText {
			t.Fatalf("expected sample text, got %q", got)
		}
	})

	t.Run("cancelled context is not masked", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := WithSampleFallback(&staticExtractor{err: errors.New("aborted")}, nil).Extract(ctx, doc)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSampleTextHasEightQuestions(t *testing.T) {
	if got := strings.Count(SampleText, "Q: "); got != 8 {
		t.Fatalf("expected 8 questions, got %d", got)
	}
	if got := strings.Count(SampleText, "A: "); got != 8 {
		t.Fatalf("expected 8 answers, got %d", got)
	}
}

func TestReadSource(t *testing.T) {
	storage := &memoryStorage{files: map[string][]byte{"a/b.txt": []byte("hello")}}

	raw, err := ReadSource(context.Background(), storage, &domain.Document{StoragePath: "a/b.txt"})
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if string(raw) != "hello" {
		t.Fatalf("unexpected content %q", raw)
	}

	if _, err := ReadSource(context.Background(), storage, &domain.Document{StoragePath: "missing"}); err == nil {
		t.Fatalf("expected error for missing object")
	}
}
