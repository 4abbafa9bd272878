package server

import (
	"fmt"
	"time"

	"github.com/Lllllllleong/examsolver/internal/gcp"
)

// Config holds the HTTP-facing settings.
type Config struct {
	MaxUploadBytes int64
	SessionIdleTTL time.Duration
}

// LoadConfig loads and validates the server settings from the environment.
func LoadConfig() (*Config, error) {
	maxUpload, err := gcp.GetEnvInt64("MAX_UPLOAD_BYTES", 20<<20)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	ttl, err := time.ParseDuration(gcp.GetEnv("SESSION_IDLE_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TTL: %w", err)
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("SESSION_IDLE_TTL must be at least 1s, got %s", ttl)
	}
	return &Config{MaxUploadBytes: maxUpload, SessionIdleTTL: ttl}, nil
}
