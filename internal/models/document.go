package models

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// PDFMediaType is the only media type accepted for uploaded documents.
const PDFMediaType = "application/pdf"

// OutputFileName is the fixed name of the downloadable solutions document.
const OutputFileName = "Exam_Solutions.pdf"

// Source yields the raw bytes of an uploaded document. Open may block on I/O.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// UploadedDocument is a user-selected file plus its declared media type.
// It lives only for the lifetime of the session that selected it.
type UploadedDocument struct {
	Name      string
	MediaType string
	Size      int64
	PageCount int // 0 when the document could not be inspected
	Source    Source
}

// EncodedPart is the base64 payload of an UploadedDocument tagged with its media type.
type EncodedPart struct {
	Data      string `json:"data"`
	MediaType string `json:"mimeType"`
}

// GenerationResult is the plain text returned by the generation service.
type GenerationResult struct {
	Text  string
	Model string
}

// OutputDocument is a rendered, paginated solutions document ready for download.
type OutputDocument struct {
	FileName  string
	PageCount int
	Data      []byte
}

// BytesSource serves a document that is already held in memory.
type BytesSource []byte

func (b BytesSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FileSource reads a document from the local filesystem.
type FileSource string

func (p FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", string(p), err)
	}
	return f, nil
}
