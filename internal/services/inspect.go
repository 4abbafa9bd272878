package services

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/examsolver/internal/models"
)

// ErrNotPDF rejects a file whose declared media type is not application/pdf.
var ErrNotPDF = errors.New("please upload a valid PDF file")

func init() {
	// pdfcpu would otherwise create a config dir under the user's home,
	// which is read-only on Cloud Functions.
	api.DisableConfigDir()
}

// ValidateMediaType accepts only the PDF media type. Parameters such as
// charset are ignored.
func ValidateMediaType(mediaType string) error {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ErrNotPDF
	}
	if !strings.EqualFold(base, models.PDFMediaType) {
		return ErrNotPDF
	}
	return nil
}

// InspectPDF reads a document with relaxed validation and reports its page count.
// It is diagnostic only; a failure here never rejects an upload.
func InspectPDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF structure: %w", err)
	}
	return n, nil
}
