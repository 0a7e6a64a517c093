package main

import (
	"testing"

	"projectlens/config"
)

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{
		Collector: config.CollectorConfig{Workers: 10, MaxPages: 5, TopN: 5},
		LLM:       config.LLMConfig{Workers: 5},
	}

	applyFlags(cfg, 3, 2, 7, 1)

	if cfg.Collector.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Collector.Workers)
	}
	if cfg.LLM.Workers != 2 {
		t.Errorf("LLM.Workers = %d, want 2", cfg.LLM.Workers)
	}
	if cfg.Collector.TopN != 7 {
		t.Errorf("TopN = %d, want 7", cfg.Collector.TopN)
	}
	if cfg.Collector.MaxPages != 1 {
		t.Errorf("MaxPages = %d, want 1", cfg.Collector.MaxPages)
	}
}

func TestApplyFlagsZeroKeepsConfig(t *testing.T) {
	cfg := &config.Config{
		Collector: config.CollectorConfig{Workers: 10, MaxPages: 5, TopN: 5},
		LLM:       config.LLMConfig{Workers: 5},
	}

	applyFlags(cfg, 0, 0, 0, 0)

	if cfg.Collector.Workers != 10 || cfg.LLM.Workers != 5 ||
		cfg.Collector.TopN != 5 || cfg.Collector.MaxPages != 5 {
		t.Errorf("zero flags modified config: %+v", cfg)
	}
}
