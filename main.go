package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"projectlens/config"
	"projectlens/internal/collector"
	"projectlens/internal/enrich"
	"projectlens/internal/fetch"
	"projectlens/internal/llm"
	"projectlens/internal/models"
	"projectlens/internal/output"
	"projectlens/internal/similarity"
	"projectlens/pkg/cache"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

func main() {
	collect := flag.Bool("collect", false, "collect project data from the Apache catalog")
	enhance := flag.Bool("enhance", false, "enhance previously collected data with an LLM")
	useLLM := flag.Bool("use-llm", false, "run enrichment inline during collection")
	inFile := flag.String("in", output.RawFile, "input file for -enhance")
	outFile := flag.String("out", "", "output file (defaults per mode)")
	workers := flag.Int("workers", 0, "collection worker count")
	llmWorkers := flag.Int("llm-workers", 0, "enrichment worker count")
	topN := flag.Int("top-n", 0, "similar projects per record")
	maxPages := flag.Int("max-pages", 0, "pages crawled per project")
	flag.Parse()

	logger.InitDefault("projectlens")
	log := logger.Get()

	if !*collect && !*enhance {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	applyFlags(cfg, *workers, *llmWorkers, *topN, *maxPages)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn().Msg("shutdown signal received, cancelling run")
		cancel()
	}()

	go serveOps(cfg.Server.Addr, log)

	if *collect {
		if err := runCollect(ctx, cfg, *useLLM, *outFile, log); err != nil {
			log.Fatal().Err(err).Msg("collection run failed")
		}
	}

	if *enhance {
		if err := runEnhance(ctx, cfg, *inFile, *outFile, log); err != nil {
			log.Fatal().Err(err).Msg("enhancement run failed")
		}
	}
}

func applyFlags(cfg *config.Config, workers, llmWorkers, topN, maxPages int) {
	if workers > 0 {
		cfg.Collector.Workers = workers
	}
	if llmWorkers > 0 {
		cfg.LLM.Workers = llmWorkers
	}
	if topN > 0 {
		cfg.Collector.TopN = topN
	}
	if maxPages > 0 {
		cfg.Collector.MaxPages = maxPages
	}
}

// runCollect executes the full collection pipeline and writes the raw
// artifact. With useLLM it also enriches every record inline before
// similarity is computed.
func runCollect(ctx context.Context, cfg *config.Config, useLLM bool, outFile string, log *logger.Logger) error {
	client := fetch.New(fetch.Options{
		Timeout:        cfg.Collector.Timeout,
		RequestsPerSec: cfg.Collector.RequestsPerSec,
		Cache:          openCache(cfg, log),
	})

	c := collector.New(client, collector.Options{
		CatalogURL: cfg.Collector.CatalogURL,
		Workers:    cfg.Collector.Workers,
		MaxPages:   cfg.Collector.MaxPages,
	}, log)

	projects, stats, err := c.Collect(ctx)
	if err != nil {
		return err
	}

	if useLLM {
		enricher, err := buildEnricher(cfg, log)
		if err != nil {
			return err
		}
		enriched := enricher.EnrichAll(ctx, projects)
		log.Info().Int("enriched", enriched).Int("total", len(projects)).Msg("inline enrichment finished")
	}

	similarity.New(log).Attach(projects, cfg.Collector.TopN)

	if outFile == "" {
		outFile = output.RawFile
	}
	if err := output.WriteJSON(outFile, projects); err != nil {
		return err
	}
	log.Info().
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Str("file", outFile).
		Msg("collected project data saved")

	writeSinks(ctx, cfg, projects, log)
	return nil
}

// runEnhance loads a previous raw artifact, enriches every record and
// writes the enhanced artifact
func runEnhance(ctx context.Context, cfg *config.Config, inFile, outFile string, log *logger.Logger) error {
	if _, err := os.Stat(inFile); err != nil {
		return fmt.Errorf("raw data file %s not found, run with -collect first", inFile)
	}

	projects, err := output.ReadJSON(inFile)
	if err != nil {
		return err
	}

	enricher, err := buildEnricher(cfg, log)
	if err != nil {
		return err
	}

	enriched := enricher.EnrichAll(ctx, projects)
	log.Info().Int("enriched", enriched).Int("total", len(projects)).Msg("enrichment finished")

	if outFile == "" {
		outFile = output.EnhancedFile
	}
	if err := output.WriteJSON(outFile, projects); err != nil {
		return err
	}
	log.Info().Str("file", outFile).Int("projects", len(projects)).Msg("enhanced project data saved")

	writeSinks(ctx, cfg, projects, log)
	return nil
}

func buildEnricher(cfg *config.Config, log *logger.Logger) (*enrich.Enricher, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	backend, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return enrich.New(backend, cfg.LLM.Workers, log), nil
}

// openCache returns the Redis page cache when configured, nil otherwise
func openCache(cfg *config.Config, log *logger.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	c, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Warn().Msg("redis unavailable, running without page cache")
		return nil
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("page cache enabled")
	return c
}

// writeSinks mirrors the artifact into the optional Postgres and
// Elasticsearch sinks. Sink failures are logged, never fatal.
func writeSinks(ctx context.Context, cfg *config.Config, projects []*models.Project, log *logger.Logger) {
	if cfg.Database.Enabled {
		store, err := output.NewPostgresStore(output.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
		})
		if err != nil {
			log.WithError(err).Warn().Msg("postgres sink unavailable")
		} else {
			defer store.Close()
			n, err := store.SaveAll(projects)
			if err != nil {
				log.WithError(err).Warn().Int("written", n).Msg("postgres sink failed partway")
			} else {
				log.Info().Int("projects", n).Msg("projects saved to postgres")
			}
		}
	}

	if cfg.Elastic.Enabled {
		store, err := output.NewElasticStore(cfg.Elastic.Addresses, cfg.Elastic.Index)
		if err != nil {
			log.WithError(err).Warn().Msg("elasticsearch sink unavailable")
		} else {
			n, err := store.IndexAll(ctx, projects)
			if err != nil {
				log.WithError(err).Warn().Int("indexed", n).Msg("elasticsearch sink failed partway")
			} else {
				log.Info().Int("projects", n).Msg("projects indexed in elasticsearch")
			}
		}
	}
}

// serveOps exposes liveness and metrics endpoints for the duration of
// the run
func serveOps(addr string, log *logger.Logger) {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","time":%q}`, time.Now().Format(time.RFC3339))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	log.Info().Str("addr", addr).Msg("ops server listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.WithError(err).Warn().Msg("ops server stopped")
	}
}
