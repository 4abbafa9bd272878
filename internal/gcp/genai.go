package gcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/examsolver/internal/models"
)

// ErrMalformedResponse is returned when the service answers without any text candidate.
var ErrMalformedResponse = errors.New("generation response contained no text candidate")

// GeminiGenerator calls the Gemini API with a caller-supplied API key.
// A client is built per call because the key belongs to the session, not the process.
type GeminiGenerator struct {
	model string
	opts  []option.ClientOption
}

// NewGeminiGenerator returns a generator for the named model. Extra options are
// appended after the API key option (endpoints, HTTP clients in tests).
func NewGeminiGenerator(model string, opts ...option.ClientOption) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{model: model, opts: opts}
}

// ModelName reports the model requests are sent to.
func (g *GeminiGenerator) ModelName() string { return g.model }

// Generate sends the document and prompt as a single request and returns the
// concatenated text of the first candidate, unmodified.
func (g *GeminiGenerator) Generate(ctx context.Context, credential, prompt string, part models.EncodedPart) (string, error) {
	data, err := base64.StdEncoding.DecodeString(part.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode document payload: %w", err)
	}

	client, err := genai.NewClient(ctx, g.clientOptions(credential)...)
	if err != nil {
		return "", fmt.Errorf("genai.NewClient: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Blob{MIMEType: part.MediaType, Data: data}, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return geminiText(resp)
}

func (g *GeminiGenerator) clientOptions(credential string) []option.ClientOption {
	return append([]option.ClientOption{option.WithAPIKey(credential)}, g.opts...)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrMalformedResponse
	}
	var sb strings.Builder
	var found int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			found++
		}
	}
	if found == 0 {
		return "", ErrMalformedResponse
	}
	return sb.String(), nil
}

// VertexGenerator calls Gemini through Vertex AI. The regional endpoint only
// takes Application Default Credentials, so the session credential gates the
// request but is never sent.
type VertexGenerator struct {
	projectID string
	region    string
	model     string
	opts      []option.ClientOption
}

// NewVertexGenerator creates a generator bound to a project and region.
func NewVertexGenerator(projectID, region, model string, opts ...option.ClientOption) (*VertexGenerator, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexGenerator: projectID and region cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	return &VertexGenerator{projectID: projectID, region: region, model: model, opts: opts}, nil
}

func (g *VertexGenerator) ModelName() string { return g.model }

func (g *VertexGenerator) Generate(ctx context.Context, credential, prompt string, part models.EncodedPart) (string, error) {
	data, err := base64.StdEncoding.DecodeString(part.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode document payload: %w", err)
	}

	client, err := vertexgenai.NewClient(ctx, g.projectID, g.region, g.clientOptions(credential)...)
	if err != nil {
		return "", fmt.Errorf("vertexgenai.NewClient: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, vertexgenai.Blob{MIMEType: part.MediaType, Data: data}, vertexgenai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from vertex ai: %w", err)
	}
	return vertexText(resp)
}

func (g *VertexGenerator) clientOptions(string) []option.ClientOption {
	return g.opts
}

func vertexText(resp *vertexgenai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrMalformedResponse
	}
	var sb strings.Builder
	var found int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(vertexgenai.Text); ok {
			sb.WriteString(string(txt))
			found++
		}
	}
	if found == 0 {
		return "", ErrMalformedResponse
	}
	return sb.String(), nil
}
