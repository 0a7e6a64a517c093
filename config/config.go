// Package config loads pipeline configuration from the environment,
// with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Collector CollectorConfig
	LLM       LLMConfig
	Database  DatabaseConfig
	Elastic   ElasticConfig
	Redis     RedisConfig
	Server    ServerConfig
}

// CollectorConfig holds collection stage parameters
type CollectorConfig struct {
	CatalogURL     string
	Workers        int
	MaxPages       int
	TopN           int
	RequestsPerSec float64
	Timeout        time.Duration
}

// LLMConfig holds enrichment backend parameters
type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Workers  int
	Timeout  time.Duration
}

// DatabaseConfig holds the optional PostgreSQL sink parameters
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ElasticConfig holds the optional Elasticsearch sink parameters
type ElasticConfig struct {
	Enabled   bool
	Addresses []string
	Index     string
}

// RedisConfig holds the optional page cache parameters
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds the ops HTTP server parameters
type ServerConfig struct {
	Addr string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Collector: CollectorConfig{
			CatalogURL:     getEnv("CATALOG_URL", ""),
			Workers:        getEnvInt("COLLECT_WORKERS", 10),
			MaxPages:       getEnvInt("CRAWL_MAX_PAGES", 5),
			TopN:           getEnvInt("SIMILARITY_TOP_N", 5),
			RequestsPerSec: getEnvFloat("REQUESTS_PER_SEC", 20),
			Timeout:        getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", "ollama"),
			Model:    getEnv("LLM_MODEL", ""),
			BaseURL:  getEnv("LLM_BASE_URL", ""),
			Workers:  getEnvInt("LLM_WORKERS", 5),
			Timeout:  getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getEnv("POSTGRES_HOST", "") != "",
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "projectlens"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "projectlens"),
		},
		Elastic: ElasticConfig{
			Enabled:   getEnv("ELASTICSEARCH_URL", "") != "",
			Addresses: parseCommaSeparated(getEnv("ELASTICSEARCH_URL", "")),
			Index:     getEnv("ELASTICSEARCH_INDEX", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ADDR", "") != "",
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Addr: getEnv("OPS_ADDR", ":9092"),
		},
	}

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case "cohere":
		cfg.LLM.APIKey = os.Getenv("COHERE_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and fills remaining defaults
func (c *Config) Validate() error {
	if c.Collector.Workers < 1 {
		return fmt.Errorf("COLLECT_WORKERS must be >= 1")
	}
	if c.Collector.MaxPages < 1 {
		return fmt.Errorf("CRAWL_MAX_PAGES must be >= 1")
	}
	if c.Collector.TopN < 1 {
		return fmt.Errorf("SIMILARITY_TOP_N must be >= 1")
	}
	if c.LLM.Workers < 1 {
		return fmt.Errorf("LLM_WORKERS must be >= 1")
	}
	return nil
}

// ValidateLLM checks that the configured provider is usable. Only
// called when enrichment is requested so collect-only runs never need
// credentials.
func (c *Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=openai requires OPENAI_API_KEY")
		}
	case "cohere":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=cohere requires COHERE_API_KEY")
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
