// Package llm provides text-generation backends behind a single
// interface. A backend is constructed once from configuration and
// shared by every enrichment worker.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by the factory
const (
	ProviderOpenAI = "openai"
	ProviderCohere = "cohere"
	ProviderOllama = "ollama"
)

const defaultTimeout = 120 * time.Second

// Backend generates a free-form completion for a prompt
type Backend interface {
	// GenerateResponse returns the model's raw text output
	GenerateResponse(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend for logging
	Name() string
}

// Config selects and configures a backend
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// New constructs the backend named by cfg.Provider. Hosted providers
// require an API key; a missing key is a configuration error.
func New(cfg Config) (Backend, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires OPENAI_API_KEY", cfg.Provider)
		}
		return newOpenAI(cfg), nil
	case ProviderCohere:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires COHERE_API_KEY", cfg.Provider)
		}
		return newCohere(cfg), nil
	case ProviderOllama:
		return newOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
