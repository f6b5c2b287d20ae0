package fts

import "strings"

// tokenize splits text on non-alphanumeric boundaries, lowercases each
// piece, and drops anything shorter than minWordLength - the same shape
// of tokenizer most full-text engines default to (§4.3).
func tokenize(text string, minWordLength int) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() >= minWordLength {
			tokens = append(tokens, strings.ToLower(b.String()))
		}
		b.Reset()
	}

	for _, r := range text {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}
