// Package api serves scraped materials for review and search: category
// listing plus a TF-IDF ranked free-text search over the same flattened
// text the vector-index export uses.
package api

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/saitej13sai/donizo-material-scraper/models"
)

// Hit is one search result row.
type Hit struct {
	Score    float64       `json:"score"`
	ID       string        `json:"id"`
	Site     string        `json:"site"`
	Category string        `json:"category"`
	Name     string        `json:"name"`
	Brand    *string       `json:"brand"`
	Price    *models.Price `json:"price"`
	Unit     *string       `json:"unit"`
	URL      string        `json:"url"`
}

// Index holds TF-IDF vectors over one run's materials. It is immutable
// after construction and safe for concurrent reads.
type Index struct {
	docs []models.Material
	vecs []map[string]float64
	idf  map[string]float64
}

// NewIndex builds the search index from a run's output collection.
func NewIndex(materials []models.Material) *Index {
	n := len(materials)

	df := make(map[string]int)
	tokenized := make([][]string, n)
	for i, m := range materials {
		tokens := tokenize(m.ToVectorDoc().Text)
		tokenized[i] = tokens
		for _, t := range uniqueTokens(tokens) {
			df[t]++
		}
	}

	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(float64(1+n)/float64(1+count)) + 1
	}

	vecs := make([]map[string]float64, n)
	for i, tokens := range tokenized {
		vecs[i] = vectorize(tokens, idf)
	}

	return &Index{docs: materials, vecs: vecs, idf: idf}
}

// Docs returns the indexed materials.
func (ix *Index) Docs() []models.Material {
	return ix.docs
}

// Search returns the topK materials ranked by cosine similarity against
// the query, optionally restricted to one site and/or category.
func (ix *Index) Search(query, site, category string, topK int) []Hit {
	if topK <= 0 {
		topK = 20
	}
	qvec := vectorize(tokenize(query), ix.idf)

	var hits []Hit
	for i, doc := range ix.docs {
		if site != "" && !strings.EqualFold(doc.Site, site) {
			continue
		}
		if category != "" && !strings.EqualFold(doc.Category, category) {
			continue
		}
		hits = append(hits, Hit{
			Score:    dot(qvec, ix.vecs[i]),
			ID:       doc.ID,
			Site:     doc.Site,
			Category: doc.Category,
			Name:     doc.Name,
			Brand:    doc.Brand,
			Price:    doc.Price,
			Unit:     doc.Unit,
			URL:      doc.URL,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// single-rune tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// vectorize builds an L2-normalized TF-IDF vector. Terms unknown to the
// index are ignored.
func vectorize(tokens []string, idf map[string]float64) map[string]float64 {
	tf := make(map[string]float64)
	for _, t := range tokens {
		if _, ok := idf[t]; ok {
			tf[t]++
		}
	}

	var norm float64
	for t, count := range tf {
		w := count * idf[t]
		tf[t] = w
		norm += w * w
	}
	if norm == 0 {
		return tf
	}
	norm = math.Sqrt(norm)
	for t := range tf {
		tf[t] /= norm
	}
	return tf
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for t, w := range a {
		sum += w * b[t]
	}
	return sum
}
