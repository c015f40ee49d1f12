package parser

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokWindow
	tokEOF
)

type token struct {
	kind   tokenKind
	text   string
	pos    int // byte offset in the query string
	window int // populated for tokWindow
}

// lex splits the query into tokens, recording byte offsets for error
// reporting. Boolean keywords are matched case-insensitively; `/N` becomes a
// window token.
func lex(query string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(query) {
		r := rune(query[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '/':
			start := i
			i++
			for i < len(query) && !isDelimiter(query[i]) {
				i++
			}
			text := query[start:i]
			window, err := strconv.Atoi(strings.TrimSpace(text[1:]))
			if err != nil || window < 0 {
				return nil, &ParseError{
					Token:   text,
					Pos:     start,
					Message: "proximity window must be a non-negative integer",
				}
			}
			tokens = append(tokens, token{kind: tokWindow, text: text, pos: start, window: window})
		default:
			start := i
			for i < len(query) && !isDelimiter(query[i]) {
				i++
			}
			text := query[start:i]
			tokens = append(tokens, token{kind: keywordKind(text), text: text, pos: start})
		}
	}
	tokens = append(tokens, token{kind: tokEOF, text: "", pos: len(query)})
	return tokens, nil
}

func keywordKind(text string) tokenKind {
	switch strings.ToUpper(text) {
	case "AND":
		return tokAnd
	case "OR":
		return tokOr
	case "NOT":
		return tokNot
	default:
		return tokWord
	}
}

func isDelimiter(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' ||
		b == '(' || b == ')' || b == '/'
}
