package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"projectlens/internal/fetch"
	"projectlens/pkg/logger"
)

func testClient() *fetch.Client {
	return fetch.New(fetch.Options{RequestsPerSec: 1000})
}

func testLogger() *logger.Logger {
	return logger.NewDefault("test")
}

func TestCrawlBoundedBFS(t *testing.T) {
	var mu sync.Mutex
	hits := make(map[string]int)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// Chain of 10 pages, each linking to the next and back to the first.
	for i := 0; i < 10; i++ {
		page := fmt.Sprintf("/page%d", i)
		next := fmt.Sprintf("/page%d", i+1)
		mux.HandleFunc(page, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits[r.URL.Path]++
			mu.Unlock()
			fmt.Fprintf(w, `<html><body><p>content %s</p>
				<a href="%s">next</a>
				<a href="/page0">home</a>
				<a href="https://elsewhere.example.org/off">off</a>
				</body></html>`, r.URL.Path, next)
		})
	}

	e := New(testClient(), testLogger())
	text := e.Crawl(context.Background(), srv.URL+"/page0", 5)

	mu.Lock()
	defer mu.Unlock()

	if len(hits) != 5 {
		t.Fatalf("visited %d pages, want 5: %v", len(hits), hits)
	}
	for path, n := range hits {
		if n != 1 {
			t.Errorf("page %s fetched %d times, want 1", path, n)
		}
	}
	for i := 0; i < 5; i++ {
		want := fmt.Sprintf("content /page%d", i)
		if !strings.Contains(text, want) {
			t.Errorf("crawl text missing %q", want)
		}
	}
}

func TestCrawlSkipsFailedPages(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>root page</p>
			<a href="/broken">broken</a>
			<a href="/ok">ok</a></body></html>`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>good page</p></body></html>`)
	})

	e := New(testClient(), testLogger())
	text := e.Crawl(context.Background(), srv.URL+"/", 5)

	if !strings.Contains(text, "root page") {
		t.Errorf("crawl text missing root page: %q", text)
	}
	if !strings.Contains(text, "good page") {
		t.Errorf("crawl text missing reachable page: %q", text)
	}
	if strings.Contains(text, "boom") {
		t.Errorf("crawl text contains failed page body: %q", text)
	}
}

func TestCrawlCollapsesWhitespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>alpha\n\n\t beta</p><script>var x = 1;</script></body></html>")
	}))
	defer srv.Close()

	e := New(testClient(), testLogger())
	text := e.Crawl(context.Background(), srv.URL, 1)

	if !strings.Contains(text, "alpha beta") {
		t.Errorf("whitespace not collapsed: %q", text)
	}
	if strings.Contains(text, "var x") {
		t.Errorf("script text leaked into crawl content: %q", text)
	}
}

func TestCrawlBadSeed(t *testing.T) {
	e := New(testClient(), testLogger())
	if got := e.Crawl(context.Background(), "not a url", 5); got != "" {
		t.Errorf("Crawl(bad seed) = %q, want empty", got)
	}
}

func TestCrawlCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>never seen</body></html>")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(testClient(), testLogger())
	if got := e.Crawl(ctx, srv.URL, 5); got != "" {
		t.Errorf("Crawl with cancelled context = %q, want empty", got)
	}
}
