// Package collector orchestrates the per-project pipeline: fetch each
// DOAP descriptor, scrape its pages, extract features, crawl for extra
// context. Projects are processed concurrently and a single failure
// never aborts the run.
package collector

import (
	"context"
	"sync"
	"time"

	"projectlens/internal/crawler"
	"projectlens/internal/doap"
	"projectlens/internal/features"
	"projectlens/internal/fetch"
	"projectlens/internal/models"
	"projectlens/internal/scraper"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

// DefaultWorkers bounds concurrent project pipelines
const DefaultWorkers = 10

// descriptionSentences is how many leading sentences of homepage text
// backfill a missing description
const descriptionSentences = 3

// Options configures a collection run
type Options struct {
	CatalogURL string
	Workers    int
	MaxPages   int
}

// Collector runs the collection stage end to end
type Collector struct {
	client    *fetch.Client
	scraper   *scraper.Scraper
	extractor *features.Extractor
	crawler   *crawler.Expander
	opts      Options
	log       *logger.Logger
}

// New wires a collector from the shared fetch client
func New(client *fetch.Client, opts Options, log *logger.Logger) *Collector {
	if opts.CatalogURL == "" {
		opts.CatalogURL = doap.DefaultCatalogURL
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = crawler.DefaultMaxPages
	}
	return &Collector{
		client:    client,
		scraper:   scraper.New(client, log),
		extractor: features.NewExtractor(log),
		crawler:   crawler.New(client, log),
		opts:      opts,
		log:       log.WithStage("collect"),
	}
}

// Collect fetches the catalog and runs every listed project through the
// pipeline with a bounded worker pool. Failed projects are counted and
// skipped. The returned slice holds only successful records, in
// completion order.
func (c *Collector) Collect(ctx context.Context) ([]*models.Project, *models.CollectStats, error) {
	locations, err := doap.FetchCatalog(ctx, c.client, c.opts.CatalogURL)
	if err != nil {
		return nil, nil, err
	}

	stats := &models.CollectStats{Total: len(locations)}
	c.log.Info().Int("projects", len(locations)).Msg("catalog fetched")
	metrics.SetGauge("catalog_locations", float64(len(locations)))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.opts.Workers)

	var mu sync.Mutex
	var projects []*models.Project

	start := time.Now()
	for _, location := range locations {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(location string) {
			defer wg.Done()
			defer func() { <-sem }()

			project := c.processOne(ctx, location)

			mu.Lock()
			defer mu.Unlock()
			if project != nil {
				projects = append(projects, project)
				stats.Succeeded++
			} else {
				stats.Failed++
			}
		}(location)
	}

	wg.Wait()

	metrics.IncrCounter("projects_collected_total", int64(stats.Succeeded))
	metrics.IncrCounter("projects_failed_total", int64(stats.Failed))
	c.log.Info().
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("collection finished")

	return projects, stats, nil
}

// processOne runs the full pipeline for a single DOAP location. Any
// error is logged and the project is dropped from the run.
func (c *Collector) processOne(ctx context.Context, location string) *models.Project {
	raw, err := c.client.Get(ctx, location)
	if err != nil {
		c.log.WithError(err).Warn().Str("location", location).Msg("failed to fetch DOAP")
		return nil
	}

	project, err := doap.Parse(raw)
	if err != nil {
		c.log.WithError(err).Warn().Str("location", location).Msg("failed to parse DOAP")
		return nil
	}

	if project.Homepage != "" {
		meta, text := c.scraper.Scrape(ctx, project.Homepage, project.Name)
		if meta != nil {
			project.HomepageMetadata = meta
			if meta.Logo != "" {
				project.Logo = meta.Logo
			}
		}
		if text != "" {
			if project.Description == "" {
				project.Description = scraper.FirstSentences(text, descriptionSentences)
			}
			project.ExtractedFeatures = c.extractor.Extract(text)
		}
	}

	if project.DownloadPage != "" {
		meta, _ := c.scraper.Scrape(ctx, project.DownloadPage, project.Name)
		if meta != nil {
			project.DownloadMetadata = meta
			if project.Logo == "" && meta.Logo != "" {
				project.Logo = meta.Logo
			}
		}
	}

	if project.Homepage != "" {
		project.AdditionalContent = c.crawler.Crawl(ctx, project.Homepage, c.opts.MaxPages)
	}

	c.log.Debug().Str("project", project.Name).Msg("project collected")
	return project
}
