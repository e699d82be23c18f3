package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/corpus"
	"github.com/xaenox/school-bot/internal/models"
)

type staticSource []models.QAPair

func (s staticSource) AllQAPairs(ctx context.Context) ([]models.QAPair, error) {
	return s, nil
}

var schoolPairs = []models.QAPair{
	{
		Question:         "전학은 어떻게 하나요?",
		Answer:           "행정실에 전학 서류를 제출해 주세요.",
		AdditionalAnswer: "전입 학교에서 요청하는 서류도 확인해 주세요.",
		Category:         "학적",
	},
	{Question: "방과후 프로그램은 어떻게 신청하나요?", Answer: "학기 초 가정통신문으로 신청합니다."},
	{Question: "도서관은 몇시에 여나요?", Answer: "도서관은 오전 8시 40분부터 엽니다."},
	{Question: "학교 규칙은 어디서 볼 수 있나요?", Answer: "학교 홈페이지 학교규칙 게시판에서 볼 수 있습니다."},
}

func newResolver(t *testing.T, pairs []models.QAPair, cfg Config) *Resolver {
	t.Helper()
	h := corpus.NewHolder(staticSource(pairs), corpus.Options{}, zap.NewNop(), nil)
	require.NoError(t, h.Reload(context.Background()))
	return New(h, cfg, zap.NewNop(), nil)
}

func TestResolve_ExactIgnoresCaseAndSurroundingSpace(t *testing.T) {
	pairs := append([]models.QAPair{
		{Question: "When does the School Bus leave?", Answer: "At 3:10 PM."},
	}, schoolPairs...)
	r := newResolver(t, pairs, DefaultConfig())

	tests := []string{
		"When does the School Bus leave?",
		"  when does the school bus leave?\t",
		"WHEN DOES THE SCHOOL BUS LEAVE?",
	}
	for _, msg := range tests {
		m, ok := r.Resolve(msg)
		require.True(t, ok, msg)
		assert.Equal(t, TierExact, m.Tier)
		assert.Equal(t, "At 3:10 PM.", m.Pair.Answer)
	}
}

func TestResolve_ExactFirstInLoadOrder(t *testing.T) {
	r := newResolver(t, []models.QAPair{
		{Question: "급식 시간", Answer: "first"},
		{Question: "급식 시간", Answer: "second"},
	}, DefaultConfig())

	m, ok := r.Resolve("급식 시간")
	require.True(t, ok)
	assert.Equal(t, "first", m.Pair.Answer)
}

func TestResolve_ExactBeatsHigherKeywordScore(t *testing.T) {
	r := newResolver(t, []models.QAPair{
		{Question: "급식 메뉴 공지 위치 안내", Answer: "급식 메뉴 공지 위치는 게시판입니다."},
		{Question: "급식 메뉴", Answer: "exact"},
	}, DefaultConfig())

	m, ok := r.Resolve("급식 메뉴")
	require.True(t, ok)
	assert.Equal(t, TierExact, m.Tier)
	assert.Equal(t, "exact", m.Pair.Answer)

	// The first entry would win the keyword tier on its own.
	kw := ExtractKeywords("급식 메뉴")
	assert.Greater(t,
		KeywordScore(kw, "급식 메뉴 공지 위치 안내", "급식 메뉴 공지 위치는 게시판입니다."),
		KeywordScore(kw, "급식 메뉴", "exact"))
}

func TestResolve_SimilarityTier(t *testing.T) {
	r := newResolver(t, schoolPairs, DefaultConfig())

	m, ok := r.Resolve("전학가고 싶은데")
	require.True(t, ok)
	assert.Equal(t, TierSimilarity, m.Tier)
	assert.Equal(t, schoolPairs[0].Question, m.Pair.Question)
	assert.GreaterOrEqual(t, m.Score, DefaultSimilarityThreshold)
}

func TestResolve_SimilarityThresholdIsConfigurable(t *testing.T) {
	r := newResolver(t, schoolPairs, Config{SimilarityThreshold: 0.9, MinKeywordScore: 2})

	_, ok := r.Resolve("전학가고 싶은데")
	assert.False(t, ok)
}

func TestResolve_KeywordTierCatchesOutOfVocabularyQuery(t *testing.T) {
	r := newResolver(t, schoolPairs, DefaultConfig())

	m, ok := r.Resolve("홈페이지 게시판")
	require.True(t, ok)
	assert.Equal(t, TierKeyword, m.Tier)
	assert.Equal(t, schoolPairs[3].Question, m.Pair.Question)
	assert.Equal(t, 2.0, m.Score)
}

func TestResolve_KeywordScoreBelowMinimumIsMiss(t *testing.T) {
	r := newResolver(t, schoolPairs, DefaultConfig())

	// Only the answer of the first pair mentions 행정실, worth one point.
	_, ok := r.Resolve("행정실 위치")
	assert.False(t, ok)

	lenient := newResolver(t, schoolPairs, Config{SimilarityThreshold: 0.3, MinKeywordScore: 1})
	m, ok := lenient.Resolve("행정실 위치")
	require.True(t, ok)
	assert.Equal(t, TierKeyword, m.Tier)
	assert.Equal(t, schoolPairs[0].Question, m.Pair.Question)
}

func TestResolve_NoOverlapIsMiss(t *testing.T) {
	r := newResolver(t, schoolPairs, DefaultConfig())

	m, ok := r.Resolve("날씨 어때")
	assert.False(t, ok)
	assert.Equal(t, TierMiss, m.Tier)
	assert.Equal(t, NotFoundText, r.Answer("날씨 어때"))
}

func TestResolve_EmptyCorpus(t *testing.T) {
	r := newResolver(t, nil, DefaultConfig())

	for _, msg := range []string{"전학은 어떻게 하나요?", "전학가고 싶은데", "", "   "} {
		assert.NotPanics(t, func() {
			_, ok := r.Resolve(msg)
			assert.False(t, ok)
		})
		assert.Equal(t, NotFoundText, r.Answer(msg))
	}
}

func TestAnswer_IncludesSupplementAfterBlankLine(t *testing.T) {
	r := newResolver(t, schoolPairs, DefaultConfig())

	got := r.Answer("전학가고 싶은데")

	assert.Equal(t,
		"행정실에 전학 서류를 제출해 주세요.\n\n전입 학교에서 요청하는 서류도 확인해 주세요.",
		got)
	assert.NotContains(t, got, "학적")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "answer", Format(models.QAPair{Answer: "answer", AdditionalAnswer: "  "}))
	assert.Equal(t, "answer\n\nmore", Format(models.QAPair{Answer: " answer ", AdditionalAnswer: "more", Category: "cat"}))
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"방과후 프로그램은 어떻게 신청해요?", []string{"방과후", "프로그램은", "어떻게", "신청해요"}},
		{"급식 등 메뉴", []string{"급식", "메뉴"}},
		{"등등 에서 급식", []string{"급식"}},
		{"School BUS 12번 3", []string{"school", "bus", "12번"}},
		{"!!", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.in))
		})
	}
}

func TestKeywordScore_Monotonic(t *testing.T) {
	keywords := []string{"급식", "메뉴", "시간"}
	answer := "급식 시간은 12시입니다"

	questions := []string{
		"학교 안내",
		"급식 안내",
		"급식 메뉴 안내",
		"급식 메뉴 시간 안내",
	}
	prev := -1
	for _, q := range questions {
		score := KeywordScore(keywords, q, answer)
		assert.GreaterOrEqual(t, score, prev, q)
		prev = score
	}
	assert.Equal(t, 2*3+2, KeywordScore(keywords, questions[3], answer))
}
