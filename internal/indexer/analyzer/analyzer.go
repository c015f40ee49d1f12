// Package analyzer turns raw document text into a sequence of normalized
// terms with positions. Normalization applies, in order: tokenization on
// non-letter boundaries, lowercasing, stop-word removal, and snowball
// stemming. Positions index into the tokenized stream before stop-word
// removal, so the positions of surviving terms may be non-contiguous.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// Token is a single normalized term and its position in the original
// token stream.
type Token struct {
	Term     string
	Position int
}

// Analyzer normalizes text against a fixed stop-word set. It is stateless
// apart from that set and safe for concurrent use.
type Analyzer struct {
	stopWords map[string]struct{}
}

// New creates an Analyzer with the given stop-word set. The set is consulted
// against lowercased, unstemmed tokens. A nil set disables stop-word removal.
func New(stopWords map[string]struct{}) *Analyzer {
	return &Analyzer{stopWords: stopWords}
}

// Tokenize breaks text into normalized Tokens. Position counts every token
// in the lowercased letter-run stream; stop words consume a position slot but
// do not appear in the output.
func (a *Analyzer) Tokenize(text string) []Token {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	tokens := make([]Token, 0, len(words))
	for pos, word := range words {
		if _, stop := a.stopWords[word]; stop {
			continue
		}
		tokens = append(tokens, Token{
			Term:     stemWord(word),
			Position: pos,
		})
	}
	return tokens
}

// NormalizeTerm applies the term-level transform (lowercase + stem) used for
// query terms. Stop words are not filtered here: a stop-word query term is
// simply absent from the index and matches nothing.
func (a *Analyzer) NormalizeTerm(term string) string {
	return stemWord(strings.ToLower(strings.TrimSpace(term)))
}

func stemWord(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
