package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// cohereBackend calls the Cohere Chat API.
// Docs: https://docs.cohere.com/reference/chat
// SDK: github.com/cohere-ai/cohere-go/v2
type cohereBackend struct {
	client *cohereclient.Client
	model  string
}

func newCohere(cfg Config) *cohereBackend {
	model := cfg.Model
	if model == "" {
		model = "command-r"
	}
	// Force HTTP/1.1 to avoid HTTP/2 protocol errors against the Cohere edge
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &cohereBackend{
		client: client,
		model:  model,
	}
}

func (c *cohereBackend) Name() string { return ProviderCohere + "/" + c.model }

func (c *cohereBackend) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: prompt,
		Model:   &c.model,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return resp.Text, nil
}

var _ Backend = (*cohereBackend)(nil)
