// Package parser turns a query string into an expression tree of term,
// AND/OR/NOT, and proximity nodes.
//
// Grammar, with NOT binding tighter than AND, and AND tighter than OR, all
// left-associative:
//
//	query    = or
//	or       = and { OR and }
//	and      = not { [AND] not }          // NOT after an expression reads as AND NOT
//	not      = NOT not | primary
//	primary  = "(" or ")" | term term "/"N | term
//
// Query terms are normalized (lowercased and stemmed) at parse time with the
// same transform the indexer applies, so query terms line up with index
// terms. Malformed input fails with a *ParseError naming the offending token
// and its offset; no partial tree is returned.
package parser

import (
	"fmt"
	"strings"

	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
)

// ParseError reports a malformed query, pointing at the offending token.
type ParseError struct {
	Token   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("parse error at offset %d near %q: %s", e.Pos, e.Token, e.Message)
}

func (e *ParseError) Unwrap() error {
	return apperrors.ErrInvalidQuery
}

// Parser builds expression trees from query strings. It is safe for
// concurrent use.
type Parser struct {
	analyzer *analyzer.Analyzer
}

// New creates a Parser that normalizes query terms with an.
func New(an *analyzer.Analyzer) *Parser {
	return &Parser{analyzer: an}
}

// Parse parses query into an expression tree or fails with a *ParseError.
func (p *Parser) Parse(query string) (Expr, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ParseError{Pos: 0, Message: "empty query"}
	}
	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}
	st := &parseState{tokens: tokens, analyzer: p.analyzer}
	expr, err := st.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := st.peek(); tok.kind != tokEOF {
		return nil, &ParseError{
			Token:   tok.text,
			Pos:     tok.pos,
			Message: "unexpected token after complete query",
		}
	}
	return expr, nil
}

type parseState struct {
	tokens   []token
	pos      int
	analyzer *analyzer.Analyzer
}

func (s *parseState) peek() token {
	return s.tokens[s.pos]
}

func (s *parseState) peekAt(offset int) token {
	i := s.pos + offset
	if i >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[i]
}

func (s *parseState) next() token {
	tok := s.tokens[s.pos]
	if tok.kind != tokEOF {
		s.pos++
	}
	return tok
}

func (s *parseState) parseOr() (Expr, error) {
	child, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []Expr{child}
	for s.peek().kind == tokOr {
		s.next()
		child, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &OrExpr{Children: children}, nil
}

func (s *parseState) parseAnd() (Expr, error) {
	child, err := s.parseNot()
	if err != nil {
		return nil, err
	}
	children := []Expr{child}
	for {
		switch s.peek().kind {
		case tokAnd:
			s.next()
			child, err := s.parseNot()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case tokNot:
			// "science NOT data" reads as science AND (NOT data).
			child, err := s.parseNot()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		default:
			if len(children) == 1 {
				return children[0], nil
			}
			return &AndExpr{Children: children}, nil
		}
	}
}

func (s *parseState) parseNot() (Expr, error) {
	if s.peek().kind == tokNot {
		s.next()
		child, err := s.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Child: child}, nil
	}
	return s.parsePrimary()
}

func (s *parseState) parsePrimary() (Expr, error) {
	tok := s.peek()
	switch tok.kind {
	case tokLParen:
		s.next()
		expr, err := s.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := s.peek(); closing.kind != tokRParen {
			return nil, &ParseError{
				Token:   closing.text,
				Pos:     closing.pos,
				Message: "missing closing parenthesis",
			}
		}
		s.next()
		return expr, nil
	case tokWord:
		first := s.next()
		if s.peek().kind == tokWord && s.peekAt(1).kind == tokWindow {
			second := s.next()
			window := s.next()
			return &ProximityExpr{
				TermA:  s.analyzer.NormalizeTerm(first.text),
				TermB:  s.analyzer.NormalizeTerm(second.text),
				Window: window.window,
			}, nil
		}
		if s.peek().kind == tokWindow {
			window := s.peek()
			return nil, &ParseError{
				Token:   window.text,
				Pos:     window.pos,
				Message: "proximity query requires exactly two terms before the window",
			}
		}
		return &TermExpr{Term: s.analyzer.NormalizeTerm(first.text)}, nil
	case tokWindow:
		return nil, &ParseError{
			Token:   tok.text,
			Pos:     tok.pos,
			Message: "proximity window without preceding terms",
		}
	case tokEOF:
		return nil, &ParseError{
			Pos:     tok.pos,
			Message: "unexpected end of query, expected a term",
		}
	default:
		return nil, &ParseError{
			Token:   tok.text,
			Pos:     tok.pos,
			Message: "expected a term or parenthesized expression",
		}
	}
}
