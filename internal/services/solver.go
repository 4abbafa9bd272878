package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/examsolver/internal/gcp"
	"github.com/Lllllllleong/examsolver/internal/models"
)

var (
	// ErrMissingCredential and ErrMissingDocument are input errors; no request is sent.
	ErrMissingCredential = errors.New("please provide an API key")
	ErrMissingDocument   = errors.New("please provide a PDF file")

	// ErrGeneration wraps every failure past the input checks.
	ErrGeneration = errors.New("error generating solution")
	// ErrEmptyResult means the service answered with no usable text.
	ErrEmptyResult = errors.New("generation service returned an empty answer")
)

// Generator is the boundary to the external generation service.
type Generator interface {
	Generate(ctx context.Context, credential, prompt string, part models.EncodedPart) (string, error)
	ModelName() string
}

// Solver sends one exam paper to the generation service per call.
type Solver struct {
	generator Generator
	encoder   *Encoder
	prompt    string
}

// NewSolver wires a Solver around a Generator with the fixed exam prompt.
func NewSolver(generator Generator, encoder *Encoder) *Solver {
	if encoder == nil {
		encoder = NewEncoder()
	}
	return &Solver{generator: generator, encoder: encoder, prompt: gcp.ExamSolverPrompt}
}

// CheckInputs reports the first missing input, mirroring the order the page
// asks for them.
func CheckInputs(doc *models.UploadedDocument, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return ErrMissingCredential
	}
	if doc == nil {
		return ErrMissingDocument
	}
	return nil
}

// Solve encodes the document afresh and issues exactly one generation request.
// The returned text is the service's answer, unmodified.
func (s *Solver) Solve(ctx context.Context, doc *models.UploadedDocument, credential string) (*models.GenerationResult, error) {
	if err := CheckInputs(doc, credential); err != nil {
		return nil, err
	}

	logCtx := slog.With("document", doc.Name, "sizeBytes", doc.Size, "model", s.generator.ModelName())
	logCtx.Info("Starting solution generation.")

	part, err := s.encoder.Encode(ctx, doc)
	if err != nil {
		return nil, s.fail(logCtx, "Failed to encode document", err)
	}

	text, err := s.generator.Generate(ctx, credential, s.prompt, part)
	if err != nil {
		return nil, s.fail(logCtx, "Call to generation service failed", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, s.fail(logCtx, "Generation service returned no text", ErrEmptyResult)
	}

	logCtx.Info("Solution generation complete.", "resultChars", len(text))
	return &models.GenerationResult{Text: text, Model: s.generator.ModelName()}, nil
}

func (s *Solver) fail(logCtx *slog.Logger, message string, cause error) error {
	logCtx.Error(message, "error", cause, "failureKind", describeFailure(cause))
	return fmt.Errorf("%w: %w", ErrGeneration, cause)
}

// describeFailure buckets a failure for diagnostics. It never changes what the
// user is told.
func describeFailure(err error) string {
	var gerr *googleapi.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	case errors.Is(err, gcp.ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &gerr):
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "authentication"
		case http.StatusBadRequest:
			if strings.Contains(strings.ToLower(gerr.Message), "api key") {
				return "authentication"
			}
			return "rejected"
		case http.StatusTooManyRequests:
			return "quota"
		}
		return "service"
	}
	return "transport"
}
