package corpus

import (
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 1000

// Vector is a sparse, L2-normalized feature vector keyed by vocabulary index.
type Vector map[int]float64

// Dot returns the dot product of two vectors. For normalized vectors this
// is their cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for i, w := range v {
		sum += w * o[i]
	}
	return sum
}

// vectorizer is a fitted TF-IDF model: a fixed vocabulary and the smoothed
// inverse document frequency of every term in it.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// fit builds the vocabulary from per-document feature lists. When more than
// maxFeatures distinct features exist, the ones with the highest total
// count across the corpus are kept, ties broken lexicographically.
func fit(docs [][]string, maxFeatures int) *vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	totals := make(map[string]int)
	df := make(map[string]int)
	for _, features := range docs {
		seen := make(map[string]struct{}, len(features))
		for _, f := range features {
			totals[f]++
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				df[f]++
			}
		}
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &vectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// transform projects a feature list into the fitted space. Features outside
// the vocabulary contribute nothing.
func (v *vectorizer) transform(features []string) Vector {
	tf := make(map[int]float64)
	for _, f := range features {
		if i, ok := v.vocab[f]; ok {
			tf[i]++
		}
	}
	if len(tf) == 0 {
		return Vector{}
	}

	var norm float64
	vec := make(Vector, len(tf))
	for i, count := range tf {
		w := count * v.idf[i]
		vec[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
