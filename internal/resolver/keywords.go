package resolver

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xaenox/school-bot/internal/textnorm"
)

var keywordPattern = regexp.MustCompile(`[가-힣a-zA-Z0-9]+`)

var stopWords = map[string]struct{}{
	"이": {}, "가": {}, "을": {}, "를": {}, "은": {}, "는": {},
	"에": {}, "에서": {}, "로": {}, "으로": {}, "와": {}, "과": {},
	"도": {}, "만": {}, "의": {}, "것": {}, "수": {}, "등": {}, "등등": {},
}

// ExtractKeywords returns the alphanumeric runs of text that are at least
// two characters long and not stop words, in order of appearance.
func ExtractKeywords(text string) []string {
	var keywords []string
	for _, word := range keywordPattern.FindAllString(textnorm.Normalize(text), -1) {
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// KeywordScore weighs keyword hits: two points for each keyword contained
// in the question, one for each contained in the answer.
func KeywordScore(keywords []string, question, answer string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(question, kw) {
			score += 2
		}
		if strings.Contains(answer, kw) {
			score++
		}
	}
	return score
}
