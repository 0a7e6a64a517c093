// Package enrich runs project records through an LLM backend and merges
// the structured fields the model returns. A record that fails to
// enrich is logged and kept unchanged.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"projectlens/internal/llm"
	"projectlens/internal/models"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

// DefaultWorkers bounds concurrent LLM calls
const DefaultWorkers = 5

const callTimeout = 120 * time.Second

const promptTemplate = `You are an expert about Apache projects.
Provide additional information about this Apache project: %s
And here is some basic information about it:
Short description: %s
Category: %s

Please provide the following information in a structured format using JSON only for this specific project:
1. An enhanced description (2-3 sentences)
2. A list of 3-5 key features
3. Suggested related Apache projects (2-3)
4. A refined category (if applicable)
5. Any additional insights gained from the extra content

Format the response as JSON and never put any text or even quotes before or after the JSON:
{
    "enhanced_description": "...",
    "key_features": ["feature1", "feature2", ...],
    "related_projects": ["project1", "project2", ...],
    "refined_category": "...",
    "additional_insights": "..."
}`

// Enricher drives the enrichment stage against a shared backend
type Enricher struct {
	backend llm.Backend
	workers int
	log     *logger.Logger
}

// New creates an enricher. workers <= 0 selects DefaultWorkers.
func New(backend llm.Backend, workers int, log *logger.Logger) *Enricher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Enricher{
		backend: backend,
		workers: workers,
		log:     log.WithStage("enrich").WithField("backend", backend.Name()),
	}
}

// EnrichAll processes every project concurrently with a bounded worker
// pool and returns how many records were successfully enriched. Records
// are mutated in place; failures leave their record untouched.
func (e *Enricher) EnrichAll(ctx context.Context, projects []*models.Project) int {
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)

	var mu sync.Mutex
	enriched := 0

	for _, p := range projects {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(p *models.Project) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := e.enrichOne(ctx, p); err != nil {
				metrics.IncrCounter("enrich_failures_total", 1)
				e.log.WithError(err).Warn().Str("project", p.Name).Msg("enrichment failed")
				return
			}
			metrics.IncrCounter("projects_enriched_total", 1)
			mu.Lock()
			enriched++
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return enriched
}

func (e *Enricher) enrichOne(ctx context.Context, p *models.Project) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, p.Name, p.ShortDesc, p.Category)

	start := time.Now()
	raw, err := e.backend.GenerateResponse(callCtx, prompt)
	if err != nil {
		return err
	}
	metrics.ObserveHistogram("enrich_call_seconds", time.Since(start).Seconds())

	enrichment, err := ParseResponse(raw)
	if err != nil {
		return fmt.Errorf("parsing response %q: %w", raw, err)
	}

	p.ApplyEnrichment(enrichment)
	return nil
}

// ParseResponse extracts an Enrichment from raw model output. Models
// often wrap JSON in markdown fences despite instructions, so a leading
// "```json" and trailing "```" are stripped before decoding.
func ParseResponse(raw string) (*models.Enrichment, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	s = strings.TrimSpace(s)

	var enrichment models.Enrichment
	if err := json.Unmarshal([]byte(s), &enrichment); err != nil {
		return nil, err
	}
	return &enrichment, nil
}
