package pratt

import (
	"github.com/suderio/rolldice/internal/tokenize"
)

// ParseFunc parses a whole source string into an expression.
type ParseFunc[E any] func(source string) (E, error)

// Builder accumulates the parselets of a grammar. Registering a kind twice
// in the same role replaces the earlier handler.
type Builder[E any] struct {
	tok   *tokenize.Tokenizer
	table Table[E]
}

// NewBuilder starts a grammar whose source text is split by tok.
func NewBuilder[E any](tok *tokenize.Tokenizer) *Builder[E] {
	return &Builder[E]{
		tok: tok,
		table: Table[E]{
			Prefix: make(map[tokenize.Kind]PrefixFunc[E]),
			Infix:  make(map[tokenize.Kind]Infix[E]),
		},
	}
}

// RegisterPrefix installs a raw prefix parselet.
func (b *Builder[E]) RegisterPrefix(kind tokenize.Kind, fn PrefixFunc[E]) *Builder[E] {
	b.table.Prefix[kind] = fn
	return b
}

// RegisterInfix installs a raw infix parselet.
func (b *Builder[E]) RegisterInfix(kind tokenize.Kind, precedence int, fn InfixFunc[E]) *Builder[E] {
	b.table.Infix[kind] = Infix[E]{Precedence: precedence, Parse: fn}
	return b
}

// Prefix registers a unary operator whose operand is parsed at precedence.
func (b *Builder[E]) Prefix(kind tokenize.Kind, precedence int, combine func(op tokenize.Match, operand E) E) *Builder[E] {
	return b.RegisterPrefix(kind, func(p *Parser[E], tok tokenize.Match) (E, error) {
		operand, err := p.Parse(precedence)
		if err != nil {
			var zero E
			return zero, err
		}
		return combine(tok, operand), nil
	})
}

// Postfix registers an operator that applies to the expression on its left.
func (b *Builder[E]) Postfix(kind tokenize.Kind, precedence int, combine func(op tokenize.Match, left E) E) *Builder[E] {
	return b.RegisterInfix(kind, precedence, func(_ *Parser[E], left E, tok tokenize.Match) (E, error) {
		return combine(tok, left), nil
	})
}

// InfixLeft registers a left-associative binary operator.
func (b *Builder[E]) InfixLeft(kind tokenize.Kind, precedence int, combine func(op tokenize.Match, left, right E) E) *Builder[E] {
	return b.binary(kind, precedence, precedence, combine)
}

// InfixRight registers a right-associative binary operator. The right
// operand is parsed one tier lower so a repeated operator nests rightwards.
func (b *Builder[E]) InfixRight(kind tokenize.Kind, precedence int, combine func(op tokenize.Match, left, right E) E) *Builder[E] {
	return b.binary(kind, precedence, precedence-1, combine)
}

func (b *Builder[E]) binary(kind tokenize.Kind, precedence, rightPrecedence int, combine func(op tokenize.Match, left, right E) E) *Builder[E] {
	return b.RegisterInfix(kind, precedence, func(p *Parser[E], left E, tok tokenize.Match) (E, error) {
		right, err := p.Parse(rightPrecedence)
		if err != nil {
			var zero E
			return zero, err
		}
		return combine(tok, left, right), nil
	})
}

// Construct freezes the grammar into a parse function. Later builder calls
// do not affect functions already constructed.
func (b *Builder[E]) Construct() ParseFunc[E] {
	parseTokens := b.ConstructTokens()
	tok := b.tok
	return func(source string) (E, error) {
		tokens, err := tok.Tokenize(source)
		if err != nil {
			var zero E
			return zero, err
		}
		return parseTokens(tokens)
	}
}

// ConstructTokens is Construct for input that is already tokenized.
func (b *Builder[E]) ConstructTokens() func(tokens []tokenize.Match) (E, error) {
	table := b.table.clone()
	return func(tokens []tokenize.Match) (E, error) {
		return NewParser(tokens, table).ParseAll()
	}
}

// Parentheses returns the prefix parselet for an opening bracket that is
// closed by a token of closeKind.
func Parentheses[E any](closeKind tokenize.Kind) PrefixFunc[E] {
	return func(p *Parser[E], _ tokenize.Match) (E, error) {
		inner, err := p.Parse(0)
		if err != nil {
			var zero E
			return zero, err
		}
		if err := p.Expect(closeKind, "expected closing parenthesis"); err != nil {
			var zero E
			return zero, err
		}
		return inner, nil
	}
}
