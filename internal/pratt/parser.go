// Package pratt implements a generic operator-precedence (Pratt) parser.
//
// A grammar is a pair of tables keyed by token kind: prefix parselets start
// an expression, infix parselets extend an already parsed left operand.
// Postfix operators are infix parselets that never read a right operand.
// Precedences are small integers and higher binds tighter.
package pratt

import (
	"github.com/suderio/rolldice/internal/tokenize"
)

// PrefixFunc starts an expression from a consumed token.
type PrefixFunc[E any] func(p *Parser[E], tok tokenize.Match) (E, error)

// InfixFunc extends left with a consumed operator token.
type InfixFunc[E any] func(p *Parser[E], left E, tok tokenize.Match) (E, error)

// Infix pairs an infix parselet with the precedence of its operator.
type Infix[E any] struct {
	Precedence int
	Parse      InfixFunc[E]
}

// Table holds the parselets of one grammar.
type Table[E any] struct {
	Prefix map[tokenize.Kind]PrefixFunc[E]
	Infix  map[tokenize.Kind]Infix[E]
}

func (t Table[E]) clone() Table[E] {
	out := Table[E]{
		Prefix: make(map[tokenize.Kind]PrefixFunc[E], len(t.Prefix)),
		Infix:  make(map[tokenize.Kind]Infix[E], len(t.Infix)),
	}
	for k, v := range t.Prefix {
		out.Prefix[k] = v
	}
	for k, v := range t.Infix {
		out.Infix[k] = v
	}
	return out
}

// Parser is a cursor over one token sequence. Tokens are consumed strictly
// left to right. A Parser is used for a single parse and is not safe for
// concurrent use.
type Parser[E any] struct {
	tokens []tokenize.Match
	pos    int
	table  Table[E]
}

// NewParser returns a parser over tokens using the given grammar table.
func NewParser[E any](tokens []tokenize.Match, table Table[E]) *Parser[E] {
	return &Parser[E]{tokens: tokens, table: table}
}

// Parse reads one expression, continuing as long as the next operator binds
// tighter than minPrecedence.
func (p *Parser[E]) Parse(minPrecedence int) (E, error) {
	var zero E

	tok, err := p.Next()
	if err != nil {
		return zero, err
	}
	prefix, ok := p.table.Prefix[tok.Kind]
	if !ok {
		return zero, errorAt("no prefix handler", tok)
	}
	left, err := prefix(p, tok)
	if err != nil {
		return zero, err
	}

	for p.nextPrecedence() > minPrecedence {
		tok, _ := p.Next()
		left, err = p.table.Infix[tok.Kind].Parse(p, left, tok)
		if err != nil {
			return zero, err
		}
	}
	return left, nil
}

// ParseAll parses one complete expression and fails if any token is left.
func (p *Parser[E]) ParseAll() (E, error) {
	var zero E
	expr, err := p.Parse(0)
	if err != nil {
		return zero, err
	}
	if tok, ok := p.Peek(); ok {
		return zero, errorAt("unexpected token", tok)
	}
	return expr, nil
}

// nextPrecedence is zero for end of input and for tokens without an infix
// parselet.
func (p *Parser[E]) nextPrecedence() int {
	tok, ok := p.Peek()
	if !ok {
		return 0
	}
	return p.table.Infix[tok.Kind].Precedence
}

// Peek returns the next token without consuming it.
func (p *Parser[E]) Peek() (tokenize.Match, bool) {
	if p.pos >= len(p.tokens) {
		return tokenize.Match{}, false
	}
	return p.tokens[p.pos], true
}

// Next consumes the next token.
func (p *Parser[E]) Next() (tokenize.Match, error) {
	tok, ok := p.Peek()
	if !ok {
		return tok, &Error{Msg: "unexpected end of input", Offset: p.endOffset()}
	}
	p.pos++
	return tok, nil
}

// Match consumes the next token if it has the given kind.
func (p *Parser[E]) Match(kind tokenize.Kind) bool {
	tok, ok := p.Peek()
	if !ok || tok.Kind != kind {
		return false
	}
	p.pos++
	return true
}

// Expect consumes a token of the given kind or fails with msg.
func (p *Parser[E]) Expect(kind tokenize.Kind, msg string) error {
	tok, ok := p.Peek()
	if !ok {
		return &Error{Msg: msg, Offset: p.endOffset()}
	}
	if tok.Kind != kind {
		return errorAt(msg, tok)
	}
	p.pos++
	return nil
}

// Done reports whether every token has been consumed.
func (p *Parser[E]) Done() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser[E]) endOffset() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Offset + len(last.Lexeme)
}
