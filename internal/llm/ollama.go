package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"
)

// ollamaBackend calls a local Ollama server.
// Endpoint: POST /api/generate
// Request: {"model": "...", "prompt": "...", "stream": false}
// Response: {"response": "..."}
type ollamaBackend struct {
	baseURL string
	model   string
	http    *http.Client
}

func newOllama(cfg Config) *ollamaBackend {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &ollamaBackend{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (o *ollamaBackend) Name() string { return ProviderOllama + "/" + o.model }

func (o *ollamaBackend) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama generate error: status %d", resp.StatusCode)
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Response, nil
}

var _ Backend = (*ollamaBackend)(nil)
