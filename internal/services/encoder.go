package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Lllllllleong/examsolver/internal/models"
)

// ErrInvalidDataURL is returned for data URLs without a payload separator.
var ErrInvalidDataURL = errors.New("data URL has no payload separator")

// Encoder turns an uploaded document into a transport-safe EncodedPart.
// It does not re-check the media type; callers validate before encoding.
type Encoder struct{}

// NewEncoder returns an Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Encode reads every byte of the document and returns its standard base64
// encoding. A read failure yields an error and no partial payload.
func (e *Encoder) Encode(ctx context.Context, doc *models.UploadedDocument) (models.EncodedPart, error) {
	if doc == nil || doc.Source == nil {
		return models.EncodedPart{}, ErrMissingDocument
	}

	rc, err := doc.Source.Open(ctx)
	if err != nil {
		return models.EncodedPart{}, fmt.Errorf("failed to open document %q: %w", doc.Name, err)
	}
	defer rc.Close()

	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, rc); err != nil {
		return models.EncodedPart{}, fmt.Errorf("failed to read document %q: %w", doc.Name, err)
	}
	if err := enc.Close(); err != nil {
		return models.EncodedPart{}, fmt.Errorf("failed to finalize encoding of %q: %w", doc.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return models.EncodedPart{}, err
	}

	return models.EncodedPart{Data: sb.String(), MediaType: doc.MediaType}, nil
}

// PayloadFromDataURL strips the "data:<type>;base64," header a browser file
// reader prepends and returns what follows the first comma.
func PayloadFromDataURL(dataURL string) (string, error) {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return "", ErrInvalidDataURL
	}
	return payload, nil
}

// DecodeDataURL returns the raw bytes carried by a base64 data URL.
func DecodeDataURL(dataURL string) ([]byte, error) {
	payload, err := PayloadFromDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL payload is not base64: %w", err)
	}
	return data, nil
}
