// Package retrieval ranks corpus units (course documents and FAQ entries)
// against a query string. Scoring is lexical BM25; scores are normalized to
// [0,1] and ties are broken by unit insertion order, so rankings are fully
// deterministic for fixed inputs.
package retrieval

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Unit is a retrievable text block eligible for ranking against a query
type Unit struct {
	ID    int64  // stable identifier within its source table
	Label string // human-readable provenance label, e.g. "Doc: Syllabus" or "FAQ"
	Body  string // text scored against the query
}

// Match pairs a unit with its normalized relevance score
type Match struct {
	Unit  Unit
	Score float64 // in [0,1]
}

// bm25Params holds the parameters for the BM25 algorithm
type bm25Params struct {
	k1 float64 // term frequency saturation
	b  float64 // length normalization
}

var defaultParams = bm25Params{k1: 1.5, b: 0.75}

// Rank scores every unit in the pool against the query and returns the top k
// matches, highest score first. Scores are raw BM25 normalized by the pool's
// maximum score. Exact ties keep pool order (earlier-created units first).
// An empty pool returns an empty slice; k larger than the pool returns all.
func Rank(query string, pool []Unit, k int) []Match {
	if len(pool) == 0 || k <= 0 {
		return nil
	}

	scores := scoreBM25(query, pool, defaultParams)

	matches := make([]Match, len(pool))
	for i, u := range pool {
		matches[i] = Match{Unit: u, Score: scores[i]}
	}

	// Stable sort preserves insertion order on exact score ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

// scoreBM25 computes normalized BM25 scores for every unit in the pool.
// Document statistics are built from the pool itself, so the same query
// against the same pool always yields the same scores.
func scoreBM25(query string, pool []Unit, params bm25Params) []float64 {
	totalDocs := len(pool)
	docFreq := make(map[string]int)
	docTermFreq := make([]map[string]int, totalDocs)
	docLengths := make([]int, totalDocs)

	totalLen := 0
	for i, u := range pool {
		terms := Tokenize(u.Body)
		docLengths[i] = len(terms)
		totalLen += len(terms)

		termFreq := make(map[string]int, len(terms))
		for _, term := range terms {
			termFreq[term]++
		}
		docTermFreq[i] = termFreq

		for term := range termFreq {
			docFreq[term]++
		}
	}

	avgDocLen := 0.0
	if totalDocs > 0 {
		avgDocLen = float64(totalLen) / float64(totalDocs)
	}

	queryTerms := Tokenize(query)
	scores := make([]float64, totalDocs)
	maxScore := 0.0

	for i := 0; i < totalDocs; i++ {
		score := 0.0
		docLen := float64(docLengths[i])

		for _, term := range queryTerms {
			tf, ok := docTermFreq[i][term]
			if !ok {
				continue
			}

			df := docFreq[term]
			idf := math.Log(1.0 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))

			// BM25: IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * docLen/avgDocLen))
			numerator := float64(tf) * (params.k1 + 1.0)
			denominator := float64(tf) + params.k1*(1.0-params.b+params.b*(docLen/avgDocLen))
			score += idf * (numerator / denominator)
		}

		scores[i] = score
		if score > maxScore {
			maxScore = score
		}
	}

	// Normalize to [0,1]. An all-zero pool stays zero.
	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}

	return scores
}

// Similarity scores two texts in isolation: shared token count over combined
// token count, in [0,1]. Unlike Rank scores, which are normalized within a
// pool, this value is comparable against a fixed cutoff, which is what the
// clustering threshold needs.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for term := range setA {
		if setB[term] {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, term := range Tokenize(text) {
		set[term] = true
	}
	return set
}

// Tokenize splits text into lowercase word tokens, dropping punctuation.
// Both query and unit bodies go through the same tokenizer.
func Tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
