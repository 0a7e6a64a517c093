// Package scraper extracts structured signals from project web pages:
// title, description, headings, outbound links and a best-guess logo.
package scraper

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"projectlens/internal/fetch"
	"projectlens/internal/models"
	"projectlens/internal/urlutil"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

// scrapeTimeout bounds a single page fetch
const scrapeTimeout = 10 * time.Second

// Scraper fetches and parses project pages
type Scraper struct {
	client *fetch.Client
	log    *logger.Logger
}

// New creates a scraper backed by the shared fetch client
func New(client *fetch.Client, log *logger.Logger) *Scraper {
	return &Scraper{client: client, log: log.WithStage("scrape")}
}

// Scrape fetches a page and extracts its metadata plus the concatenated
// paragraph text. Any fetch or parse failure is logged and yields a nil
// metadata pointer; errors never propagate to the caller.
func (s *Scraper) Scrape(ctx context.Context, pageURL, projectName string) (*models.PageMetadata, string) {
	pageURL = urlutil.Normalize(pageURL)
	if !urlutil.IsAbsolute(pageURL) {
		s.log.Warn().Str("url", pageURL).Str("project", projectName).Msg("skipping non-absolute page URL")
		return nil, ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	start := time.Now()
	body, err := s.client.Get(fetchCtx, pageURL)
	if err != nil {
		metrics.IncrCounter("scrape_errors_total", 1)
		s.log.WithError(err).Warn().Str("url", pageURL).Str("project", projectName).Msg("failed to scrape page")
		return nil, ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		metrics.IncrCounter("scrape_errors_total", 1)
		s.log.WithError(err).Warn().Str("url", pageURL).Str("project", projectName).Msg("failed to parse page HTML")
		return nil, ""
	}

	meta := &models.PageMetadata{
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		H1Headers: []string{},
		Links:     []string{},
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.MetaDescription = strings.TrimSpace(desc)
	}

	doc.Find("h1").Each(func(i int, sel *goquery.Selection) {
		meta.H1Headers = append(meta.H1Headers, strings.TrimSpace(sel.Text()))
	})

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = urlutil.Normalize(href)
		if strings.HasPrefix(href, "http") {
			meta.Links = append(meta.Links, href)
		}
	})

	meta.Logo = findLogo(doc, pageURL, projectName)

	metrics.ObserveHistogram("scrape_duration_seconds", time.Since(start).Seconds())
	metrics.IncrCounter("pages_scraped_total", 1)

	return meta, paragraphText(doc)
}

// paragraphText joins the text of all paragraph elements, the corpus
// used for description backfill and feature extraction
func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(i int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// FirstSentences returns up to n leading sentences of a text, used to
// backfill empty DOAP descriptions from homepage prose.
func FirstSentences(text string, n int) string {
	var sentences []string
	var buf strings.Builder

	for _, r := range text {
		buf.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(buf.String()); s != "" {
				sentences = append(sentences, s)
			}
			buf.Reset()
			if len(sentences) >= n {
				break
			}
		}
	}
	if len(sentences) < n {
		if s := strings.TrimSpace(buf.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	return strings.Join(sentences, " ")
}
