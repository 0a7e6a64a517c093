// Package similarity scores project descriptions against each other with
// TF-IDF weighted cosine similarity and attaches the nearest neighbors
// to every record.
package similarity

import (
	"math"
	"sort"
	"strings"

	"projectlens/internal/features"
	"projectlens/internal/models"
	"projectlens/pkg/logger"
	"projectlens/pkg/metrics"
)

// DefaultTopN is how many neighbors each record receives
const DefaultTopN = 5

// Engine vectorizes a corpus of project texts and ranks pairwise
// similarity. The stopword set is shared and read-only.
type Engine struct {
	stopwords map[string]struct{}
	log       *logger.Logger
}

// New creates a similarity engine
func New(log *logger.Logger) *Engine {
	return &Engine{
		stopwords: features.StopwordSet(),
		log:       log.WithStage("similarity"),
	}
}

// Attach computes corpus-wide TF-IDF vectors from each project's
// similarity text and sets SimilarProjects on every record: up to topN
// neighbors ordered by descending score, the record itself excluded.
// Fewer than two projects is a no-op.
func (e *Engine) Attach(projects []*models.Project, topN int) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(projects) < 2 {
		return
	}

	docs := make([][]string, len(projects))
	for i, p := range projects {
		docs[i] = e.tokenize(p.SimilarityText())
	}

	vectors := vectorize(docs)

	for i, p := range projects {
		neighbors := make([]models.SimilarProject, 0, len(projects)-1)
		for j, other := range projects {
			if i == j {
				continue
			}
			neighbors = append(neighbors, models.SimilarProject{
				Name:  other.Name,
				Score: cosine(vectors[i], vectors[j]),
			})
		}
		sort.SliceStable(neighbors, func(a, b int) bool {
			return neighbors[a].Score > neighbors[b].Score
		})
		if len(neighbors) > topN {
			neighbors = neighbors[:topN]
		}
		p.SimilarProjects = neighbors
	}

	metrics.SetGauge("similarity_corpus_size", float64(len(projects)))
	e.log.Info().Int("projects", len(projects)).Int("top_n", topN).Msg("similarity neighbors attached")
}

// tokenize lowercases, keeps alphanumeric terms and drops stopwords
func (e *Engine) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := e.stopwords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// vectorize builds L2-normalized TF-IDF vectors, one per document.
// IDF uses the smoothed form ln((1+n)/(1+df)) + 1 so that terms present
// in every document still carry a small positive weight.
func vectorize(docs [][]string) []map[string]float64 {
	n := len(docs)

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	vectors := make([]map[string]float64, n)
	for i, doc := range docs {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}

		vec := make(map[string]float64, len(tf))
		var norm float64
		for term, count := range tf {
			idf := math.Log(float64(1+n)/float64(1+df[term])) + 1
			w := float64(count) * idf
			vec[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range vec {
				vec[term] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// cosine is the dot product of two L2-normalized sparse vectors
func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	return dot
}
