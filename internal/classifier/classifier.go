package classifier

import (
	"strings"

	"github.com/xaenox/school-bot/internal/textnorm"
)

type Classifier interface {
	Detect(message string) Intent
	Confidence(message string, intent Intent) float64
}

// minConfidence keeps the reported confidence of a matched intent above zero.
const minConfidence = 0.1

// DefaultKeywords are the keyword sets the school bot ships with.
var DefaultKeywords = map[Intent][]string{
	Schedule: {
		"급식", "밥", "메뉴", "식단", "점심", "아침", "저녁",
		"오늘 뭐 먹어", "내일 뭐 먹어", "급식 메뉴", "식단 알려줘",
	},
	Question: {
		"전학", "학교", "규칙", "시험", "방과후", "도서관", "운동장",
		"어떻게", "절차", "신청", "발급", "연락", "상담", "신고",
		"언제", "몇시", "시간", "끝나", "시작", "개학", "방학",
		"어디", "위치", "장소", "보관함", "교실", "반", "행정실",
	},
	Greeting: {
		"안녕", "안녕하세요", "안녕하십니까", "반갑", "고마워", "감사",
		"잘가", "잘 있어", "재미있어", "좋아", "싫어",
	},
}

// KeywordClassifier routes a message by plain substring containment of
// per-intent keywords.
type KeywordClassifier struct {
	keywords map[Intent][]string
}

// NewKeywordClassifier builds a classifier over the given keyword sets.
// Keywords are normalized here once; intents missing from the map keep
// their defaults.
func NewKeywordClassifier(keywords map[Intent][]string) *KeywordClassifier {
	normalized := make(map[Intent][]string, len(Priority))
	for _, intent := range Priority {
		src, ok := keywords[intent]
		if !ok {
			src = DefaultKeywords[intent]
		}
		set := make([]string, 0, len(src))
		for _, kw := range src {
			if kw = textnorm.Normalize(kw); kw != "" {
				set = append(set, kw)
			}
		}
		normalized[intent] = set
	}
	return &KeywordClassifier{keywords: normalized}
}

// Detect returns the first intent in Priority order with a keyword
// contained in the message, or Fallback.
func (c *KeywordClassifier) Detect(message string) Intent {
	message = textnorm.Normalize(message)
	if message == "" {
		return Fallback
	}

	for _, intent := range Priority {
		for _, kw := range c.keywords[intent] {
			if strings.Contains(message, kw) {
				return intent
			}
		}
	}
	return Fallback
}

// Confidence reports matched/total keywords for intent, floored at 0.1.
// It is diagnostic only and plays no part in routing.
func (c *KeywordClassifier) Confidence(message string, intent Intent) float64 {
	keywords := c.keywords[intent]
	if len(keywords) == 0 {
		return 0
	}

	message = textnorm.Normalize(message)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			matched++
		}
	}

	confidence := float64(matched) / float64(len(keywords))
	if confidence < minConfidence {
		return minConfidence
	}
	return confidence
}

// Keywords returns a copy of the normalized keyword set for intent.
func (c *KeywordClassifier) Keywords(intent Intent) []string {
	return append([]string(nil), c.keywords[intent]...)
}
