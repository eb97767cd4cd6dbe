package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceDelimiter = regexp.MustCompile(`[.!?]+`)

// significantTokens lowercases s, splits it on whitespace and keeps tokens of at least minLen runes.
// Punctuation stays attached to the token.
func significantTokens(s string, minLen int) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= minLen {
			out = append(out, field)
		}
	}
	return out
}

func distinctTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func truncateRunes(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:limit]), true
}
