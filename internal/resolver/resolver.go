// Package resolver finds the stored answer for a question-type message.
//
// Three tiers are tried in a fixed order and the first hit wins: exact
// question match, TF-IDF similarity, then keyword overlap. Scores are
// never compared across tiers.
package resolver

import (
	"strings"

	"github.com/xaenox/school-bot/internal/corpus"
	"github.com/xaenox/school-bot/internal/metrics"
	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/textnorm"
	"go.uber.org/zap"
)

// NotFoundText is returned by Answer when no tier matches.
const NotFoundText = "죄송합니다. 해당 질문에 대한 답변을 찾을 수 없습니다. 학교로 문의해 주세요."

// Tier names the strategy that produced a match.
type Tier string

const (
	TierExact      Tier = "exact"
	TierSimilarity Tier = "similarity"
	TierKeyword    Tier = "keyword"
	TierMiss       Tier = "miss"
)

const (
	DefaultSimilarityThreshold = 0.3
	DefaultMinKeywordScore     = 2
)

// Config holds the acceptance thresholds of the similarity and keyword tiers.
type Config struct {
	SimilarityThreshold float64
	MinKeywordScore     int
}

// DefaultConfig returns the thresholds the bot ships with.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: DefaultSimilarityThreshold,
		MinKeywordScore:     DefaultMinKeywordScore,
	}
}

// Match is a resolved pair and how it was found.
type Match struct {
	Pair  models.QAPair
	Tier  Tier
	Score float64
}

// Resolver answers questions against the holder's current index.
type Resolver struct {
	holder  *corpus.Holder
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Collector
}

// New creates a resolver. A zero threshold in cfg means "use the default";
// pass a negative value to accept anything.
func New(holder *corpus.Holder, cfg Config, logger *zap.Logger, m *metrics.Collector) *Resolver {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.MinKeywordScore == 0 {
		cfg.MinKeywordScore = DefaultMinKeywordScore
	}
	return &Resolver{
		holder:  holder,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Resolve runs the tiers against one index snapshot. It reports false when
// nothing clears its tier's threshold.
func (r *Resolver) Resolve(message string) (Match, bool) {
	idx := r.holder.Current()
	msg := textnorm.Normalize(message)
	if msg == "" || idx.Len() == 0 {
		return Match{Tier: TierMiss}, false
	}

	for i := 0; i < idx.Len(); i++ {
		if idx.NormalizedQuestion(i) == msg {
			return Match{Pair: idx.Pair(i), Tier: TierExact, Score: 1}, true
		}
	}

	if best, score := idx.MostSimilar(idx.Project(msg)); best >= 0 && score >= r.cfg.SimilarityThreshold {
		return Match{Pair: idx.Pair(best), Tier: TierSimilarity, Score: score}, true
	}

	keywords := ExtractKeywords(msg)
	if len(keywords) == 0 {
		return Match{Tier: TierMiss}, false
	}
	best, bestScore := -1, 0
	for i := 0; i < idx.Len(); i++ {
		score := KeywordScore(keywords, idx.NormalizedQuestion(i), idx.NormalizedAnswer(i))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore >= r.cfg.MinKeywordScore {
		return Match{Pair: idx.Pair(best), Tier: TierKeyword, Score: float64(bestScore)}, true
	}

	return Match{Tier: TierMiss}, false
}

// Answer returns the formatted answer for message, or NotFoundText.
func (r *Resolver) Answer(message string) string {
	m, ok := r.Resolve(message)
	r.metrics.ObserveTier(string(m.Tier))
	if !ok {
		r.logger.Info("No answer found", zap.String("message", message))
		return NotFoundText
	}

	r.logger.Info("Answer resolved",
		zap.String("tier", string(m.Tier)),
		zap.Float64("score", m.Score),
		zap.String("question", m.Pair.Question))
	return Format(m.Pair)
}

// Format renders a pair as reply text. The supplementary answer follows the
// primary one after a blank line. The category is not shown.
func Format(p models.QAPair) string {
	answer := strings.TrimSpace(p.Answer)
	if extra := strings.TrimSpace(p.AdditionalAnswer); extra != "" {
		return answer + "\n\n" + extra
	}
	return answer
}
