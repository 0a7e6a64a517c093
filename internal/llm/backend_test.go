package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "gemini"}); err == nil {
		t.Error("New with unknown provider did not fail")
	}
}

func TestNewHostedProviderRequiresKey(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderCohere} {
		if _, err := New(Config{Provider: provider}); err == nil {
			t.Errorf("New(%s) without API key did not fail", provider)
		}
	}
}

func TestNewOllamaNeedsNoKey(t *testing.T) {
	b, err := New(Config{Provider: ProviderOllama})
	if err != nil {
		t.Fatalf("New(ollama) failed: %v", err)
	}
	if !strings.HasPrefix(b.Name(), "ollama/") {
		t.Errorf("Name() = %q, want ollama/ prefix", b.Name())
	}
}

func TestOpenAIGenerateResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "a fine answer"}},
			},
		})
	}))
	defer srv.Close()

	b, err := New(Config{Provider: ProviderOpenAI, APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := b.GenerateResponse(context.Background(), "say something")
	if err != nil {
		t.Fatalf("GenerateResponse failed: %v", err)
	}
	if got != "a fine answer" {
		t.Errorf("GenerateResponse = %q", got)
	}
}

func TestOpenAIGenerateResponseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b, _ := New(Config{Provider: ProviderOpenAI, APIKey: "test-key", BaseURL: srv.URL})
	if _, err := b.GenerateResponse(context.Background(), "hi"); err == nil {
		t.Error("GenerateResponse did not surface server error")
	}
}

func TestOllamaGenerateResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "local answer"})
	}))
	defer srv.Close()

	b, err := New(Config{Provider: ProviderOllama, BaseURL: srv.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := b.GenerateResponse(context.Background(), "say something")
	if err != nil {
		t.Fatalf("GenerateResponse failed: %v", err)
	}
	if got != "local answer" {
		t.Errorf("GenerateResponse = %q", got)
	}
}

func TestOllamaCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "never"})
	}))
	defer srv.Close()

	b, _ := New(Config{Provider: ProviderOllama, BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.GenerateResponse(ctx, "hi"); err == nil {
		t.Error("GenerateResponse with cancelled context did not fail")
	}
}
