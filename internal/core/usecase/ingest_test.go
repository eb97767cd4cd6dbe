package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func TestIngestUploadSuccess(t *testing.T) {
	repo := newDocumentRepoFake()
	storage := &ingestStorageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, nil)

	doc, err := uc.Upload(context.Background(), "faq 1.PDF", "application/pdf", bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", doc.Status)
	}
	if _, ok := repo.docs[doc.ID]; !ok {
		t.Fatalf("expected repo.Create call")
	}
	if len(queue.documentIDs) != 1 || queue.documentIDs[0] != doc.ID {
		t.Fatalf("expected published doc id %s, got %v", doc.ID, queue.documentIDs)
	}
	if want := "documents/" + doc.ID + "/faq_1.pdf"; storage.savedKey != want || doc.StoragePath != want {
		t.Fatalf("expected key %s, got %s (doc %s)", want, storage.savedKey, doc.StoragePath)
	}
	if storage.savedBody != "hello" {
		t.Fatalf("expected saved body hello, got %s", storage.savedBody)
	}

	got, err := uc.GetByID(context.Background(), doc.ID)
	if err != nil || got.ID != doc.ID {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}
}

func TestIngestUploadRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		mimeType string
		body     io.Reader
	}{
		{name: "blank filename", filename: "  ", mimeType: "text/plain", body: strings.NewReader("hello")},
		{name: "unsupported type", filename: "setup.exe", mimeType: "application/octet-stream", body: strings.NewReader("MZ")},
		{name: "empty body", filename: "notes.txt", mimeType: "text/plain", body: strings.NewReader("")},
		{name: "nil body", filename: "notes.txt", mimeType: "text/plain", body: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newDocumentRepoFake()
			storage := &ingestStorageFake{}
			uc := NewIngestDocumentUseCase(repo, storage, &queueFake{}, nil)

			_, err := uc.Upload(context.Background(), tc.filename, tc.mimeType, tc.body)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if storage.savedKey != "" || len(repo.docs) != 0 {
				t.Fatalf("nothing must be stored for rejected uploads")
			}
		})
	}
}

func TestIngestUploadAcceptsTextMimeWithUnknownExtension(t *testing.T) {
	uc := NewIngestDocumentUseCase(newDocumentRepoFake(), &ingestStorageFake{}, &queueFake{}, nil)

	if _, err := uc.Upload(context.Background(), "CHANGELOG", "text/plain; charset=utf-8", strings.NewReader("v1")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
}

func TestIngestUploadQueueErrorMarksDocumentFailed(t *testing.T) {
	repo := newDocumentRepoFake()
	uc := NewIngestDocumentUseCase(repo, &ingestStorageFake{}, &queueFake{err: errors.New("queue down")}, nil)

	_, err := uc.Upload(context.Background(), "report.txt", "text/plain", bytes.NewBufferString("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish document event") {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(repo.docs) != 1 {
		t.Fatalf("expected stored metadata, got %d documents", len(repo.docs))
	}
	for _, doc := range repo.docs {
		if doc.Status != domain.StatusFailed || !strings.Contains(doc.Error, "queue down") {
			t.Fatalf("expected failed document, got %+v", doc)
		}
	}
}

func TestIngestUploadStorageError(t *testing.T) {
	repo := newDocumentRepoFake()
	uc := NewIngestDocumentUseCase(repo, &ingestStorageFake{err: errors.New("disk full")}, &queueFake{}, nil)

	if _, err := uc.Upload(context.Background(), "report.txt", "text/plain", bytes.NewBufferString("hello")); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.docs) != 0 {
		t.Fatalf("metadata must not be written when storage fails")
	}
}

func TestIngestGetByIDRequiresID(t *testing.T) {
	uc := NewIngestDocumentUseCase(newDocumentRepoFake(), &ingestStorageFake{}, &queueFake{}, nil)
	if _, err := uc.GetByID(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStoredName(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"my  report.PDF":   "my_report.pdf",
		"отчёт за год.txt": "отчёт_за_год.txt",
		`C:\docs\faq.md`:   "faq.md",
		"..":               "document",
		"weird.p df":       "weird.p_df",
		"":                 "document",
	}
	for in, want := range cases {
		if got := storedName(in); got != want {
			t.Fatalf("storedName(%q) = %q, want %q", in, got, want)
		}
	}
}
