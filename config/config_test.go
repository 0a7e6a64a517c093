package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Collector.Workers != 10 {
		t.Errorf("Workers = %d, want 10", cfg.Collector.Workers)
	}
	if cfg.Collector.MaxPages != 5 {
		t.Errorf("MaxPages = %d, want 5", cfg.Collector.MaxPages)
	}
	if cfg.Collector.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.Collector.TopN)
	}
	if cfg.LLM.Workers != 5 {
		t.Errorf("LLM.Workers = %d, want 5", cfg.LLM.Workers)
	}
	if cfg.LLM.Timeout != 120*time.Second {
		t.Errorf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Server.Addr != ":9092" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.Enabled || cfg.Elastic.Enabled || cfg.Redis.Enabled {
		t.Error("optional sinks enabled without configuration")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COLLECT_WORKERS", "3")
	t.Setenv("CRAWL_MAX_PAGES", "2")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELASTICSEARCH_URL", "http://es1:9200, http://es2:9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Collector.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Collector.Workers)
	}
	if cfg.Collector.MaxPages != 2 {
		t.Errorf("MaxPages = %d, want 2", cfg.Collector.MaxPages)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("LLM.APIKey = %q", cfg.LLM.APIKey)
	}
	if !cfg.Elastic.Enabled || len(cfg.Elastic.Addresses) != 2 {
		t.Errorf("Elastic = %+v", cfg.Elastic)
	}
	if cfg.Elastic.Addresses[1] != "http://es2:9200" {
		t.Errorf("Addresses[1] = %q", cfg.Elastic.Addresses[1])
	}
}

func TestValidateRejectsBadRanges(t *testing.T) {
	t.Setenv("COLLECT_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Error("Load accepted COLLECT_WORKERS=0")
	}
}

func TestValidateLLM(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantErr  bool
	}{
		{"ollama needs no key", "ollama", "", false},
		{"openai without key", "openai", "", true},
		{"openai with key", "openai", "sk-test", false},
		{"cohere without key", "cohere", "", true},
		{"unknown provider", "gemini", "key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LLM: LLMConfig{Provider: tt.provider, APIKey: tt.apiKey}}
			err := cfg.ValidateLLM()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLLM() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
