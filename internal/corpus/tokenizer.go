package corpus

import (
	"unicode"

	"github.com/xaenox/school-bot/internal/textnorm"
)

// Tokenize splits text into terms. Latin and digit runs of at least two
// runes are kept whole. Hangul, Han and Kana runs are split into
// overlapping two-character bigrams, since Korean attaches particles and
// endings to the stem ("전학은", "전학가고") and whole-word terms would
// rarely line up. Single characters are dropped.
func Tokenize(text string) []string {
	text = textnorm.Normalize(text)

	var tokens []string
	var run []rune
	runCJK := false

	flush := func() {
		if len(run) == 0 {
			return
		}
		switch {
		case runCJK && len(run) > 2:
			for i := 0; i+1 < len(run); i++ {
				tokens = append(tokens, string(run[i:i+2]))
			}
		case len(run) >= 2:
			tokens = append(tokens, string(run))
		}
		run = run[:0]
	}

	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		cjk := isCJK(r)
		if len(run) > 0 && cjk != runCJK {
			flush()
		}
		runCJK = cjk
		run = append(run, r)
	}
	flush()

	return tokens
}

// Features returns the unigram and adjacent-pair features of text.
func Features(text string) []string {
	return withBigrams(Tokenize(text))
}

func withBigrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	features := make([]string, 0, 2*len(tokens)-1)
	features = append(features, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		features = append(features, tokens[i]+" "+tokens[i+1])
	}
	return features
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}
