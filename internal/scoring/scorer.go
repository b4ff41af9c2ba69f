// Package scoring measures how well a résumé's skills cover a job description.
package scoring

import (
	"math"
	stdregexp "regexp"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
)

// termPattern matches runs of two or more word characters
var termPattern = stdregexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Scorer computes the TF-IDF cosine similarity between a job description and
// a skill list. It holds no per-call state and is safe for concurrent use.
type Scorer struct {
	analyzer analysis.Analyzer
}

// NewScorer creates a scorer with the default term analyzer
func NewScorer() *Scorer {
	return &Scorer{
		analyzer: &analysis.DefaultAnalyzer{
			Tokenizer: regexp.NewRegexpTokenizer(termPattern),
			TokenFilters: []analysis.TokenFilter{
				lowercase.NewLowerCaseFilter(),
			},
		},
	}
}

// Tokenize returns the terms of text in order
func (s *Scorer) Tokenize(text string) []string {
	stream := s.analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// Score returns the cosine similarity in [0, 1] between the TF-IDF vectors of
// jobDescription and the space-joined skills. It returns 0 when either side
// has no terms.
func (s *Scorer) Score(jobDescription string, skills []string) float64 {
	return s.Similarity(jobDescription, strings.Join(skills, " "))
}

// Similarity returns the TF-IDF cosine similarity of two documents.
// Similarity(a, b) == Similarity(b, a).
func (s *Scorer) Similarity(a, b string) float64 {
	docA := countTerms(s.Tokenize(a))
	docB := countTerms(s.Tokenize(b))
	if len(docA.terms) == 0 || len(docB.terms) == 0 {
		return 0
	}

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if docA.counts[term] > 0 {
			df++
		}
		if docB.counts[term] > 0 {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	vecA := docA.weigh(idf)
	vecB := docB.weigh(idf)

	// fixed summation order keeps the score symmetric to the last bit
	shared := make([]string, 0)
	for _, term := range docA.terms {
		if docB.counts[term] > 0 {
			shared = append(shared, term)
		}
	}

	var dot float64
	for _, term := range shared {
		dot += vecA[term] * vecB[term]
	}

	return clamp(dot)
}

// termVector holds term counts and the terms in sorted order
type termVector struct {
	terms  []string
	counts map[string]float64
}

func countTerms(tokens []string) termVector {
	v := termVector{counts: make(map[string]float64, len(tokens))}
	for _, t := range tokens {
		if v.counts[t] == 0 {
			v.terms = append(v.terms, t)
		}
		v.counts[t]++
	}
	sort.Strings(v.terms)
	return v
}

// weigh returns the L2-normalized tf*idf weights
func (v termVector) weigh(idf func(string) float64) map[string]float64 {
	weights := make(map[string]float64, len(v.terms))
	var norm float64
	for _, term := range v.terms {
		w := v.counts[term] * idf(term)
		weights[term] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for term := range weights {
		weights[term] /= norm
	}
	return weights
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Percent converts a score to a percentage rounded to two decimals
func Percent(score float64) float64 {
	return math.Round(score*100*100) / 100
}
