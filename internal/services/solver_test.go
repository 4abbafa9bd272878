package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/examsolver/internal/gcp"
	"github.com/Lllllllleong/examsolver/internal/models"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int

	credential string
	prompt     string
	part       models.EncodedPart
}

func (g *fakeGenerator) Generate(_ context.Context, credential, prompt string, part models.EncodedPart) (string, error) {
	g.calls++
	g.credential, g.prompt, g.part = credential, prompt, part
	return g.text, g.err
}

func (g *fakeGenerator) ModelName() string { return "fake-model" }

func pdfDoc(data string) *models.UploadedDocument {
	return &models.UploadedDocument{
		Name:      "exam.pdf",
		MediaType: models.PDFMediaType,
		Size:      int64(len(data)),
		Source:    models.BytesSource(data),
	}
}

func TestSolve_MissingInputsSendNothing(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	solver := NewSolver(gen, nil)

	_, err := solver.Solve(context.Background(), pdfDoc("%PDF-1.4"), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.NotErrorIs(t, err, ErrGeneration)

	_, err = solver.Solve(context.Background(), pdfDoc("%PDF-1.4"), "   ")
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = solver.Solve(context.Background(), nil, "key")
	assert.ErrorIs(t, err, ErrMissingDocument)

	assert.Zero(t, gen.calls)
}

func TestSolve_ReturnsTextVerbatim(t *testing.T) {
	answer := "**Question**: What is 2+2?\n**Answer**: 4\n**Key Concept**: Basic addition.\n\n"
	gen := &fakeGenerator{text: answer}
	solver := NewSolver(gen, NewEncoder())

	res, err := solver.Solve(context.Background(), pdfDoc("%PDF-1.4 What is 2+2?"), "secret-key")
	require.NoError(t, err)
	assert.Equal(t, answer, res.Text)
	assert.Equal(t, "fake-model", res.Model)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "secret-key", gen.credential)
	assert.Equal(t, gcp.ExamSolverPrompt, gen.prompt)
	assert.Equal(t, models.PDFMediaType, gen.part.MediaType)
	decoded, err := base64.StdEncoding.DecodeString(gen.part.Data)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 What is 2+2?", string(decoded))
}

func TestSolve_ServiceFailureIsGeneric(t *testing.T) {
	gen := &fakeGenerator{err: &googleapi.Error{Code: http.StatusBadRequest, Message: "API key not valid"}}

	_, err := NewSolver(gen, nil).Solve(context.Background(), pdfDoc("%PDF"), "bad-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 1, gen.calls)
}

func TestSolve_EmptyAnswerIsFailure(t *testing.T) {
	for _, text := range []string{"", " \n\t "} {
		gen := &fakeGenerator{text: text}
		_, err := NewSolver(gen, nil).Solve(context.Background(), pdfDoc("%PDF"), "key")
		assert.ErrorIs(t, err, ErrGeneration)
		assert.ErrorIs(t, err, ErrEmptyResult)
	}
}

func TestSolve_EncodingFailureIsGeneric(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	doc := &models.UploadedDocument{Name: "bad.pdf", MediaType: models.PDFMediaType, Source: unopenableSource{}}

	_, err := NewSolver(gen, nil).Solve(context.Background(), doc, "key")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Zero(t, gen.calls)
}

func TestDescribeFailure(t *testing.T) {
	cases := map[string]error{
		"authentication": &googleapi.Error{Code: http.StatusForbidden},
		"quota":          &googleapi.Error{Code: http.StatusTooManyRequests},
		"rejected":       &googleapi.Error{Code: http.StatusBadRequest, Message: "unsupported mime type"},
		"service":        &googleapi.Error{Code: http.StatusInternalServerError},
		"malformed":      gcp.ErrMalformedResponse,
		"empty":          ErrEmptyResult,
		"cancelled":      context.DeadlineExceeded,
		"transport":      errors.New("connection reset by peer"),
	}
	for want, err := range cases {
		assert.Equal(t, want, describeFailure(err), err.Error())
	}
	assert.Equal(t, "authentication", describeFailure(&googleapi.Error{Code: http.StatusBadRequest, Message: "API key not valid. Please pass a valid API key."}))
}

func TestLoadSolverConfig(t *testing.T) {
	t.Setenv("GENAI_BACKEND", "vertex")
	t.Setenv("PROJECT_ID", "")
	_, err := LoadSolverConfig()
	assert.Error(t, err)

	t.Setenv("PROJECT_ID", "exam-project")
	t.Setenv("GENAI_MODEL", "gemini-1.5-pro")
	cfg, err := LoadSolverConfig()
	require.NoError(t, err)
	assert.Equal(t, "vertex", cfg.Backend)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	assert.Equal(t, "us-central1", cfg.VertexAIRegion)

	gen, err := NewGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", gen.ModelName())

	t.Setenv("GENAI_BACKEND", "openai")
	_, err = LoadSolverConfig()
	assert.Error(t, err)
}
