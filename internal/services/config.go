package services

import (
	"fmt"

	"github.com/Lllllllleong/examsolver/internal/gcp"
)

// SolverConfig holds configuration for the generation backend.
type SolverConfig struct {
	Backend        string
	Model          string
	ProjectID      string
	VertexAIRegion string
}

// LoadSolverConfig loads and validates the generation settings from the environment.
func LoadSolverConfig() (*SolverConfig, error) {
	config := &SolverConfig{
		Backend:        gcp.GetEnv("GENAI_BACKEND", "gemini"),
		Model:          gcp.GetEnv("GENAI_MODEL", gcp.DefaultModel),
		ProjectID:      gcp.GetEnv("PROJECT_ID", ""),
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
	}
	switch config.Backend {
	case "gemini":
	case "vertex":
		if config.ProjectID == "" {
			return nil, fmt.Errorf("PROJECT_ID environment variable must be set for the vertex backend")
		}
	default:
		return nil, fmt.Errorf("GENAI_BACKEND must be \"gemini\" or \"vertex\", got %q", config.Backend)
	}
	return config, nil
}

// NewGenerator builds the Generator named by the config.
func NewGenerator(config *SolverConfig) (Generator, error) {
	if config.Backend == "vertex" {
		g, err := gcp.NewVertexGenerator(config.ProjectID, config.VertexAIRegion, config.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex generator: %w", err)
		}
		return g, nil
	}
	return gcp.NewGeminiGenerator(config.Model), nil
}

// NewSolverFromEnv loads configuration and returns a ready Solver.
func NewSolverFromEnv() (*Solver, error) {
	config, err := LoadSolverConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	generator, err := NewGenerator(config)
	if err != nil {
		return nil, err
	}
	return NewSolver(generator, NewEncoder()), nil
}
