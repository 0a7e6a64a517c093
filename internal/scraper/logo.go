package scraper

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pmezard/go-difflib/difflib"
)

// logoDenylist filters generic ASF branding and social icons that sit
// on almost every project page
var logoDenylist = []string{
	"maven-feather.png",
	"asf_logo.png",
	"apache_logo.png",
	"feather.png",
	"apache-logo.png",
	"apache_logo_wide.png",
	"slack-logo.svg",
	"twitter_32_26_white.png",
}

// logoSelectors are tried in priority order; earlier matches are more
// likely to be the real project logo
var logoSelectors = []string{
	"img.logo",
	".logo img",
	"a.logo img",
	"#logo img",
	`img[alt*="logo"]`,
	`img[src*="logo"]`,
}

// findLogo returns the best logo candidate URL for a page, or "" when
// no acceptable candidate exists
func findLogo(doc *goquery.Document, baseURL, projectName string) string {
	var candidates []string
	seen := make(map[string]bool)

	add := func(src string) {
		logoURL := resolveURL(baseURL, src)
		if logoURL == "" || seen[logoURL] || !isValidLogo(logoURL) {
			return
		}
		seen[logoURL] = true
		candidates = append(candidates, logoURL)
	}

	for _, selector := range logoSelectors {
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			if src, ok := sel.Attr("src"); ok && src != "" {
				add(src)
			}
		})
	}

	// Fall back to any img whose src or alt mentions "logo"
	if len(candidates) == 0 {
		doc.Find("img").Each(func(i int, sel *goquery.Selection) {
			src, _ := sel.Attr("src")
			alt, _ := sel.Attr("alt")
			if src == "" {
				return
			}
			if strings.Contains(strings.ToLower(src), "logo") || strings.Contains(strings.ToLower(alt), "logo") {
				add(src)
			}
		})
	}

	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	// Rank by filename similarity to the project name
	type scored struct {
		url   string
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{url: c, score: similarityRatio(projectName, fileName(c))}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	return ranked[0].url
}

// isValidLogo rejects denylisted generic images by case-insensitive
// substring match
func isValidLogo(logoURL string) bool {
	lower := strings.ToLower(logoURL)
	for _, excluded := range logoDenylist {
		if strings.Contains(lower, excluded) {
			return false
		}
	}
	return true
}

// similarityRatio is a normalized edit-distance ratio between two
// strings, case-insensitive
func similarityRatio(a, b string) float64 {
	m := difflib.NewMatcher(
		strings.Split(strings.ToLower(a), ""),
		strings.Split(strings.ToLower(b), ""),
	)
	return m.Ratio()
}

// fileName extracts the last path segment of a URL
func fileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := u.Path
	return path[strings.LastIndex(path, "/")+1:]
}

// resolveURL resolves a possibly-relative image source against the page
// URL, returning "" for unparseable input
func resolveURL(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
