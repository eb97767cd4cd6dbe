package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusLoading  DocumentStatus = "loading"
	StatusReady    DocumentStatus = "ready"
	StatusFailed   DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	Chunks      int            `json:"chunks"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var supportedExtensions = map[string]struct{}{
	".txt": {}, ".text": {}, ".csv": {}, ".md": {}, ".markdown": {},
	".pdf": {}, ".docx": {}, ".xlsx": {}, ".xlsm": {},
}

// IsSupportedDocument reports whether a text extractor exists for the file. Unknown
// extensions are accepted when the MIME type is text/*.
func IsSupportedDocument(filename, mimeType string) bool {
	if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "text/")
}
