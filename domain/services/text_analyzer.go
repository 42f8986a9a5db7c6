package services

import (
	"strings"
	"unicode"
)

// TextAnalyzer provides the tokenization used when building node tag sets.
// This is a domain service so the similarity calculator stays free of
// string-processing details.
type TextAnalyzer interface {
	// Tokenize breaks text into unique lowercase tokens longer than the
	// given minimum length.
	Tokenize(text string, minLength int) []string

	// WordSet returns the unique lowercase whitespace-separated words of a
	// name, used by the name-similarity fallback.
	WordSet(text string) map[string]bool
}

// DefaultTextAnalyzer implements TextAnalyzer with simple rune scanning.
type DefaultTextAnalyzer struct{}

// NewDefaultTextAnalyzer creates a new text analyzer.
func NewDefaultTextAnalyzer() *DefaultTextAnalyzer {
	return &DefaultTextAnalyzer{}
}

// Tokenize breaks text into unique lowercase tokens longer than minLength,
// splitting on any non-alphanumeric rune.
func (ta *DefaultTextAnalyzer) Tokenize(text string, minLength int) []string {
	text = strings.ToLower(text)

	seen := make(map[string]bool)
	tokens := make([]string, 0)

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := current.String()
		current.Reset()
		if len(token) > minLength && !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// WordSet returns the unique lowercase whitespace-separated words of a name.
func (ta *DefaultTextAnalyzer) WordSet(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = true
	}
	return words
}
