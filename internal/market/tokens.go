// Package market reconciles a listing's price against reference-marketplace
// evidence, falling back to category heuristics when no evidence exists.
package market

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	modelNumberRe = regexp.MustCompile(`(?i)\b[A-Z0-9]+-[A-Z0-9]+\b`)
	storageRe     = regexp.MustCompile(`\b\d+[GgTt][Bb]\b`)
)

// maxTokens bounds the lenient match pattern; more tokens over-narrow it.
const maxTokens = 3

// SignificantTokens extracts up to three search tokens from a listing title.
// Model numbers and storage sizes are the strongest product identifiers, so
// they are kept first; remaining slots are filled with the longest plain
// words over two characters.
func SignificantTokens(title string) []string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(tok string) {
		tok = strings.TrimSpace(tok)
		key := strings.ToLower(tok)
		if tok == "" || seen[key] {
			return
		}
		seen[key] = true
		tokens = append(tokens, tok)
	}

	for _, m := range modelNumberRe.FindAllString(title, -1) {
		add(m)
	}
	for _, m := range storageRe.FindAllString(title, -1) {
		add(m)
	}

	words := splitWords(title)
	// Longest first; ties keep title order.
	for picked := len(tokens); picked < maxTokens; picked++ {
		best := ""
		for _, w := range words {
			if len([]rune(w)) <= 2 || seen[strings.ToLower(w)] {
				continue
			}
			if len([]rune(w)) > len([]rune(best)) {
				best = w
			}
		}
		if best == "" {
			break
		}
		add(best)
	}

	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	return tokens
}

// splitWords breaks a title on anything that is not a letter or digit.
// Hangul counts as letters, so Korean product names survive intact.
func splitWords(title string) []string {
	return strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
