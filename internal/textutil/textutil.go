package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordPattern matches runs of ASCII word characters.
var wordPattern = regexp.MustCompile(`\w+`)

// MinKeywordLength is the shortest token kept by Keywords.
const MinKeywordLength = 3

// stopWords are dropped from keyword sets.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "is": {}, "was": {}, "are": {},
	"been": {}, "be": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "my": {}, "your": {}, "our": {},
	"their": {},
}

// Normalize lowercases and trims s.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// IsStopWord reports whether w (already lowercased) is a stop word.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenize splits text into lowercase word tokens in order of appearance.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Keywords returns the set of distinct tokens in text that are not stop words
// and are at least MinKeywordLength characters long.
func Keywords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range Tokenize(text) {
		if utf8.RuneCountInString(token) < MinKeywordLength || IsStopWord(token) {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}
