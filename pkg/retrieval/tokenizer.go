package retrieval

import "strings"

// Tokenizer splits text into the tokens used for keyword scoring. It is a
// pluggable strategy so keyword matching can be swapped (stemming, n-grams)
// without touching the ranking or merge logic.
type Tokenizer interface {
	// Tokenize returns the tokens of text.
	Tokenize(text string) []string
}

// WhitespaceTokenizer is the default tokenizer: lower-cased,
// whitespace-separated tokens.
type WhitespaceTokenizer struct{}

// Tokenize implements Tokenizer.
func (WhitespaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// tokenSet builds a set from the tokenizer's output.
func tokenSet(tokenizer Tokenizer, text string) map[string]struct{} {
	tokens := tokenizer.Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
