package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// openAIBackend calls the OpenAI chat completions API, or any server
// speaking the same protocol when BaseURL is set.
// Endpoint: POST /v1/chat/completions
// Request: {"model": "...", "messages": [{"role": "user", "content": "..."}]}
// Response: {"choices": [{"message": {"content": "..."}}]}
type openAIBackend struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

func newOpenAI(cfg Config) *openAIBackend {
	endpoint := defaultOpenAIEndpoint
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL + "/v1/chat/completions"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &openAIBackend{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (o *openAIBackend) Name() string { return ProviderOpenAI + "/" + o.model }

func (o *openAIBackend) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	resp, err := o.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return "", fmt.Errorf("openai chat error: status %d: %v", resp.StatusCode, body)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai chat returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

var _ Backend = (*openAIBackend)(nil)
