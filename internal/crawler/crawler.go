// Package crawler performs a bounded breadth-first crawl of same-domain
// pages to gather additional textual context for a project.
package crawler

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"projectlens/internal/fetch"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

// DefaultMaxPages bounds the crawl per project
const DefaultMaxPages = 5

const pageTimeout = 10 * time.Second

var whitespaceRun = regexp.MustCompile(`\s+`)

// Expander walks same-domain links breadth-first from a seed page
type Expander struct {
	client *fetch.Client
	log    *logger.Logger
}

// New creates a crawl expander backed by the shared fetch client
func New(client *fetch.Client, log *logger.Logger) *Expander {
	return &Expander{client: client, log: log.WithStage("crawl")}
}

// Crawl visits up to maxPages unique same-domain pages starting at
// seedURL and returns their compacted visible text joined by spaces.
// Failed pages are logged and skipped; the result may be empty.
func (e *Expander) Crawl(ctx context.Context, seedURL string, maxPages int) string {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		e.log.Warn().Str("url", seedURL).Msg("unusable crawl seed")
		return ""
	}

	visited := make(map[string]bool)
	queued := map[string]bool{seedURL: true}
	frontier := []string{seedURL}
	var content []string

	for len(frontier) > 0 && len(visited) < maxPages {
		pageURL := frontier[0]
		frontier = frontier[1:]

		if visited[pageURL] {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, pageTimeout)
		body, err := e.client.Get(fetchCtx, pageURL)
		cancel()
		if err != nil {
			metrics.IncrCounter("crawl_page_errors_total", 1)
			e.log.WithError(err).Warn().Str("url", pageURL).Msg("failed to fetch crawl page")
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			metrics.IncrCounter("crawl_page_errors_total", 1)
			e.log.WithError(err).Warn().Str("url", pageURL).Msg("failed to parse crawl page")
			continue
		}

		visited[pageURL] = true
		metrics.IncrCounter("crawl_pages_visited_total", 1)

		if text := visibleText(doc); text != "" {
			content = append(content, text)
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			continue
		}
		doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			next := resolveLink(base, href)
			if next == "" || next == pageURL {
				return
			}
			if hostOf(next) != seed.Host {
				return
			}
			if visited[next] || queued[next] {
				return
			}
			queued[next] = true
			frontier = append(frontier, next)
		})
	}

	return strings.Join(content, " ")
}

// visibleText returns the page text with scripts and styles removed and
// all whitespace runs collapsed to single spaces
func visibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	text := doc.Text()
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	// Fragments alias earlier pages under a different key
	resolved.Fragment = ""
	return resolved.String()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
