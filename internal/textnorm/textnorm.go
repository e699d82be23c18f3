// Package textnorm normalizes user and corpus text before any matching.
//
// Messages arrive from different clients: iOS and macOS keyboards may send
// decomposed Hangul (NFD jamo) while the crawler stores composed syllables,
// so every comparison goes through NFC first.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in NFC, lowercased, with unicode spaces folded to
// ASCII and surrounding whitespace trimmed.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.TrimSpace(strings.ToLower(foldSpaces(s)))
}

// foldSpaces replaces non-ASCII space characters with U+0020.
func foldSpaces(s string) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isUnicodeSpace(r) {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isUnicodeSpace(r rune) bool {
	switch {
	case r == '\u00A0': // no-break space
		return true
	case r >= '\u2000' && r <= '\u200A':
		return true
	case r == '\u202F', r == '\u205F':
		return true
	case r == '\u3000': // ideographic space
		return true
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
