package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	ta := NewDefaultTextAnalyzer()

	tokens := ta.Tokenize("Advanced React Hooks & Context", 2)
	assert.Equal(t, []string{"advanced", "react", "hooks", "context"}, tokens)

	// Tokens at or below the minimum length are dropped.
	assert.Equal(t, []string{"basics"}, ta.Tokenize("Go Basics", 2))

	// Duplicates collapse.
	assert.Equal(t, []string{"test"}, ta.Tokenize("test test TEST", 2))

	assert.Empty(t, ta.Tokenize("", 2))
}

func TestWordSet(t *testing.T) {
	ta := NewDefaultTextAnalyzer()

	words := ta.WordSet("React Hooks Deep Dive")
	assert.Len(t, words, 4)
	assert.True(t, words["react"])
	assert.True(t, words["dive"])

	assert.Empty(t, ta.WordSet("   "))
}
