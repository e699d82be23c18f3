// Package corpus holds the answer corpus and its TF-IDF vector space.
//
// An Index is immutable once built. Reloading builds a fresh Index and
// swaps it in through a Holder, so readers always see a vocabulary and a
// set of vectors that belong together.
package corpus

import (
	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/textnorm"
)

// Options tune index construction.
type Options struct {
	MaxFeatures int
}

// Index is the answer corpus plus its lexical vector space.
type Index struct {
	pairs     []models.QAPair
	questions []string // normalized, parallel to pairs
	answers   []string // normalized, parallel to pairs
	space     *vectorizer
	vectors   []Vector
}

// New builds an index over pairs. Pairs with a blank question or answer
// are skipped. An empty corpus yields a valid index that never matches.
func New(pairs []models.QAPair, opts Options) *Index {
	idx := &Index{}
	docs := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		if !p.Valid() {
			continue
		}
		idx.pairs = append(idx.pairs, p)
		idx.questions = append(idx.questions, textnorm.Normalize(p.Question))
		idx.answers = append(idx.answers, textnorm.Normalize(p.Answer))
		docs = append(docs, Features(p.Question))
	}

	idx.space = fit(docs, opts.MaxFeatures)
	idx.vectors = make([]Vector, len(docs))
	for i, features := range docs {
		idx.vectors[i] = idx.space.transform(features)
	}
	return idx
}

// Empty returns an index over no pairs.
func Empty() *Index {
	return New(nil, Options{})
}

// Len is the number of pairs in the index.
func (idx *Index) Len() int {
	return len(idx.pairs)
}

// Pair returns the i-th pair in load order.
func (idx *Index) Pair(i int) models.QAPair {
	return idx.pairs[i]
}

// NormalizedQuestion returns the i-th question as used for exact matching.
func (idx *Index) NormalizedQuestion(i int) string {
	return idx.questions[i]
}

// NormalizedAnswer returns the i-th primary answer, normalized.
func (idx *Index) NormalizedAnswer(i int) string {
	return idx.answers[i]
}

// VocabularySize is the number of features in the vector space.
func (idx *Index) VocabularySize() int {
	return len(idx.space.vocab)
}

// Project maps text into the index's fixed vector space.
func (idx *Index) Project(text string) Vector {
	return idx.space.transform(Features(text))
}

// MostSimilar returns the position of the pair whose question vector has
// the highest cosine similarity with v, and that similarity. The first
// pair wins ties. It returns -1 and 0 when nothing shares a feature with v.
func (idx *Index) MostSimilar(v Vector) (int, float64) {
	best, bestScore := -1, 0.0
	if len(v) == 0 {
		return best, bestScore
	}
	for i, vec := range idx.vectors {
		if score := vec.Dot(v); score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return best, bestScore
}
