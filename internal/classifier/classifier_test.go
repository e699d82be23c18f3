package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier_Detect(t *testing.T) {
	c := NewKeywordClassifier(nil)

	tests := []struct {
		message string
		want    Intent
	}{
		{"오늘 급식 뭐야?", Schedule},
		{"내일 메뉴 알려줘", Schedule},
		{"점심에 뭐 나와요", Schedule},
		{"전학가고 싶은데", Question},
		{"방과후 프로그램은 어떻게 신청하나요?", Question},
		{"안녕하세요", Greeting},
		{"고마워요", Greeting},
		{"날씨 어때", Fallback},
		{"", Fallback},
		{"   ", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Detect(tt.message))
		})
	}
}

func TestKeywordClassifier_PriorityOrder(t *testing.T) {
	c := NewKeywordClassifier(nil)

	// Both schedule and question keywords: schedule is tested first.
	assert.Equal(t, Schedule, c.Detect("학교 급식 알려줘"))
	// Both question and greeting keywords: question is tested first.
	assert.Equal(t, Question, c.Detect("안녕, 학교 규칙 알려줘"))
}

func TestKeywordClassifier_ScheduleKeywordAnywhere(t *testing.T) {
	c := NewKeywordClassifier(nil)

	for _, msg := range []string{"메뉴", "  메뉴  ", "이번주메뉴는?", "혹시 메뉴 좀"} {
		assert.Equal(t, Schedule, c.Detect(msg), msg)
	}
}

func TestKeywordClassifier_CaseInsensitive(t *testing.T) {
	c := NewKeywordClassifier(map[Intent][]string{
		Schedule: {"Lunch Menu"},
		Question: {"RULES"},
		Greeting: {"hello"},
	})

	assert.Equal(t, Schedule, c.Detect("what is the LUNCH menu today"))
	assert.Equal(t, Question, c.Detect("school rules?"))
	assert.Equal(t, Greeting, c.Detect("HeLLo"))
	assert.Equal(t, Fallback, c.Detect("tell me a joke"))
}

func TestKeywordClassifier_MissingIntentKeepsDefaults(t *testing.T) {
	c := NewKeywordClassifier(map[Intent][]string{Greeting: {"hi"}})

	assert.Equal(t, Schedule, c.Detect("급식"))
	assert.Equal(t, []string{"hi"}, c.Keywords(Greeting))
}

func TestKeywordClassifier_Confidence(t *testing.T) {
	c := NewKeywordClassifier(nil)
	total := float64(len(DefaultKeywords[Schedule]))

	// "급식", "메뉴" and "급식 메뉴" all match.
	assert.InDelta(t, 3/total, c.Confidence("급식 메뉴 알려줘", Schedule), 1e-9)

	// No match is floored, never zero.
	assert.InDelta(t, 0.1, c.Confidence("날씨 어때", Schedule), 1e-9)

	// Fallback has no keyword set.
	assert.Zero(t, c.Confidence("날씨 어때", Fallback))
}

func TestIntent_StringRoundTrip(t *testing.T) {
	for _, intent := range []Intent{Fallback, Schedule, Question, Greeting} {
		parsed, err := ParseIntent(intent.String())
		require.NoError(t, err)
		assert.Equal(t, intent, parsed)
	}

	_, err := ParseIntent("weather")
	assert.Error(t, err)
}
