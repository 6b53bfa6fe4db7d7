package chunker

import "strings"

// EstimateTokens approximates the token count as words times tokensPerWord,
// at least 1 for non-empty text.
func EstimateTokens(text string, tokensPerWord float64) int {
	words := WordCount(text)
	if words == 0 {
		return 0
	}
	tokens := int(float64(words) * tokensPerWord)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
