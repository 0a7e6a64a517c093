// Package features derives salient keyword features from free text on
// project pages using shallow NLP: part-of-speech driven noun-phrase
// chunking merged with multi-token named entities, ranked by frequency.
package features

import (
	"sort"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"

	"projectlens/pkg/logger"
)

// MaxFeatures caps the number of extracted features per text
const MaxFeatures = 10

// Extractor holds the shared read-only NLP resources for a run
type Extractor struct {
	stopwords map[string]struct{}
	log       *logger.Logger
}

// NewExtractor initializes the extractor with the English stopword set
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		stopwords: StopwordSet(),
		log:       log.WithStage("features"),
	}
}

// Extract returns up to MaxFeatures candidate features for a text,
// most frequent first, ties broken by first encounter. Deterministic
// for identical input.
func (e *Extractor) Extract(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		e.log.WithError(err).Warn().Msg("failed to build NLP document")
		return nil
	}

	candidates := e.nounPhrases(doc.Tokens())
	candidates = append(candidates, multiTokenEntities(doc.Entities())...)

	return topByFrequency(candidates, MaxFeatures)
}

// nounPhrases chunks the filtered token stream with the grammar
// JJ* NN+ (optional adjectives followed by one or more nouns);
// bare noun runs fall out of the same rule.
func (e *Extractor) nounPhrases(tokens []prose.Token) []string {
	type tagged struct {
		text string
		tag  string
	}

	// Lowercase, keep alphanumeric tokens, drop stopwords
	var words []tagged
	for _, tok := range tokens {
		w := strings.ToLower(tok.Text)
		if !isAlphanumeric(w) {
			continue
		}
		if _, stop := e.stopwords[w]; stop {
			continue
		}
		words = append(words, tagged{text: w, tag: tok.Tag})
	}

	var phrases []string
	i := 0
	for i < len(words) {
		j := i
		for j < len(words) && isAdjective(words[j].tag) {
			j++
		}
		k := j
		for k < len(words) && isNoun(words[k].tag) {
			k++
		}
		if k > j {
			// A phrase needs at least one noun; leading adjectives
			// without one are skipped token by token
			parts := make([]string, 0, k-i)
			for _, w := range words[i:k] {
				parts = append(parts, w.text)
			}
			phrases = append(phrases, strings.Join(parts, " "))
			i = k
		} else {
			i++
		}
	}

	return phrases
}

// multiTokenEntities keeps named-entity spans of more than one token
func multiTokenEntities(entities []prose.Entity) []string {
	var spans []string
	for _, ent := range entities {
		text := strings.TrimSpace(ent.Text)
		if strings.Contains(text, " ") {
			spans = append(spans, text)
		}
	}
	return spans
}

// topByFrequency counts candidates and returns the n most frequent
// distinct strings, stable on first-encountered order for ties
func topByFrequency(candidates []string, n int) []string {
	counts := make(map[string]int)
	order := make(map[string]int)
	var distinct []string

	for i, c := range candidates {
		if _, seen := counts[c]; !seen {
			order[c] = i
			distinct = append(distinct, c)
		}
		counts[c]++
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return order[distinct[i]] < order[distinct[j]]
	})

	if len(distinct) > n {
		distinct = distinct[:n]
	}
	return distinct
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isAdjective(tag string) bool {
	return strings.HasPrefix(tag, "JJ")
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}
