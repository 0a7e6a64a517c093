package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("pages_fetched_total", 1)
	m.IncrCounter("pages_fetched_total", 2)
	m.IncrCounter("fetch_errors_total", 1)

	assert.Equal(t, int64(3), m.Counter("pages_fetched_total"))
	assert.Equal(t, int64(1), m.Counter("fetch_errors_total"))
	assert.Equal(t, int64(0), m.Counter("missing"))
}

func TestMetrics_HistogramTrim(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 1500; i++ {
		m.ObserveHistogram("scrape_duration_seconds", float64(i))
	}

	m.mu.RLock()
	n := len(m.histograms["scrape_duration_seconds"])
	m.mu.RUnlock()
	assert.Equal(t, 1000, n)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("projects_collected_total", 42)
	m.SetGauge("workers_active", 10)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "projects_collected_total 42"))
	assert.True(t, strings.Contains(body, "workers_active 10.00"))
}
