// Package fetch provides the shared HTTP layer for every network call
// the pipeline makes: a pooled client, polite rate limiting, and an
// optional Redis page cache for reruns.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"projectlens/pkg/cache"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; ProjectLens/1.0)"

// StatusError reports a non-200 response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Options configures a fetch client
type Options struct {
	Timeout        time.Duration
	RequestsPerSec float64
	MaxBodyBytes   int64
	Cache          *cache.RedisCache
	CacheTTL       time.Duration
	UserAgent      string
}

// Client is a rate-limited, optionally cached HTTP fetcher
type Client struct {
	http         *http.Client
	limiter      *rate.Limiter
	cache        *cache.RedisCache
	cacheTTL     time.Duration
	maxBodyBytes int64
	userAgent    string
}

// New creates a fetch client with connection pooling
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 20
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 * 1024 * 1024
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}

	return &Client{
		http:         httpClient,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSec), int(opts.RequestsPerSec)),
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		maxBodyBytes: opts.MaxBodyBytes,
		userAgent:    opts.UserAgent,
	}
}

// Get fetches a URL and returns the response body. Non-200 responses
// yield a *StatusError. When a cache is configured, hits skip the
// network entirely.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		var body []byte
		if err := c.cache.Get(pageKey(url), &body); err == nil {
			metrics.IncrCounter("fetch_cache_hits_total", 1)
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncrCounter("fetch_errors_total", 1)
		return nil, err
	}
	defer resp.Body.Close()

	metrics.ObserveHistogram("fetch_duration_seconds", time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.IncrCounter("fetch_non200_total", 1)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		metrics.IncrCounter("fetch_errors_total", 1)
		return nil, err
	}

	metrics.IncrCounter("pages_fetched_total", 1)

	if c.cache != nil {
		if err := c.cache.Set(pageKey(url), body, c.cacheTTL); err != nil {
			logger.WithError(err).Warn().Str("url", url).Msg("failed to cache page")
		}
	}

	return body, nil
}

func pageKey(url string) string {
	return "page:" + url
}
