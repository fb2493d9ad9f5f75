// Package tokenize splits source text into typed tokens from an ordered list
// of literal and regular expression patterns.
//
// Scanning is delegated to participle's stateful lexer: every pattern becomes
// one rule, tried in registration order at each position, and the first rule
// that matches decides both the extent and the kind of the token. Whitespace
// between tokens is always skipped.
package tokenize

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind names a class of token. Literal patterns use their own text as kind.
type Kind string

// Match is a single token found in the source, in source order.
type Match struct {
	Kind   Kind
	Lexeme string
	Offset int
}

func (m Match) String() string {
	return fmt.Sprintf("%s(%q)", m.Kind, m.Lexeme)
}

// Pattern describes one token class. Exactly one of Literal or Regex is set.
type Pattern struct {
	Literal string
	Regex   string
	Kind    Kind
}

// Literal matches text verbatim. Its kind is the text itself.
func Literal(text string) Pattern {
	return Pattern{Literal: text, Kind: Kind(text)}
}

// Regex matches a regular expression and tags the result with kind.
func Regex(expr string, kind Kind) Pattern {
	return Pattern{Regex: expr, Kind: kind}
}

func (p Pattern) expr() (string, error) {
	switch {
	case p.Literal != "" && p.Regex != "":
		return "", fmt.Errorf("pattern %q sets both literal and regex", p.Kind)
	case p.Literal != "":
		return regexp.QuoteMeta(p.Literal), nil
	case p.Regex != "":
		return p.Regex, nil
	default:
		return "", errors.New("pattern has neither literal nor regex")
	}
}

func (p Pattern) kind() Kind {
	if p.Kind == "" {
		return Kind(p.Literal)
	}
	return p.Kind
}

const whitespaceRule = "whitespace"

// Tokenizer turns source strings into ordered token matches.
// It is immutable once built and safe for concurrent use.
type Tokenizer struct {
	def   *lexer.StatefulDefinition
	kinds map[lexer.TokenType]Kind
	skip  lexer.TokenType
	order []Kind
}

// New builds a tokenizer from patterns in priority order.
func New(patterns ...Pattern) (*Tokenizer, error) {
	if len(patterns) == 0 {
		return nil, errors.New("tokenizer needs at least one pattern")
	}

	// Rule names are synthetic so that arbitrary kinds (such as "+=") never
	// collide with participle's naming conventions.
	rules := []lexer.SimpleRule{{Name: whitespaceRule, Pattern: `\s+`}}
	names := make(map[string]Kind, len(patterns))
	order := make([]Kind, 0, len(patterns))

	for i, p := range patterns {
		expr, err := p.expr()
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("^(?:" + expr + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for %q: %w", p.kind(), err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("pattern for %q matches the empty string", p.kind())
		}

		name := fmt.Sprintf("T%d", i)
		rules = append(rules, lexer.SimpleRule{Name: name, Pattern: expr})
		names[name] = p.kind()
		order = append(order, p.kind())
	}

	def, err := lexer.NewSimple(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build lexer: %w", err)
	}

	t := &Tokenizer{
		def:   def,
		kinds: make(map[lexer.TokenType]Kind, len(names)),
		order: order,
	}
	for name, typ := range def.Symbols() {
		if name == whitespaceRule {
			t.skip = typ
			continue
		}
		if kind, ok := names[name]; ok {
			t.kinds[typ] = kind
		}
	}
	return t, nil
}

// MustNew is New for package-level grammars; it panics on a bad pattern.
func MustNew(patterns ...Pattern) *Tokenizer {
	t, err := New(patterns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Kinds lists the registered kinds in priority order.
func (t *Tokenizer) Kinds() []Kind {
	out := make([]Kind, len(t.order))
	copy(out, t.order)
	return out
}

// Tokenize scans source from left to right. It fails with *Error as soon as
// a run of characters matches no pattern.
func (t *Tokenizer) Tokenize(source string) ([]Match, error) {
	lex, err := t.def.LexString("", source)
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}

	var out []Match
	for {
		tok, err := lex.Next()
		if err != nil {
			tErr := &Error{Source: source, Err: err}
			var lexErr *lexer.Error
			if errors.As(err, &lexErr) {
				tErr.Offset = lexErr.Pos.Offset
			}
			return nil, tErr
		}
		if tok.EOF() {
			return out, nil
		}
		if tok.Type == t.skip {
			continue
		}
		out = append(out, Match{
			Kind:   t.kinds[tok.Type],
			Lexeme: tok.Value,
			Offset: tok.Pos.Offset,
		})
	}
}
