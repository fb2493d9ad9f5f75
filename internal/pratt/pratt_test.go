package pratt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/rolldice/internal/tokenize"
)

var testTokens = tokenize.MustNew(
	tokenize.Literal("+"),
	tokenize.Literal("-"),
	tokenize.Literal("*"),
	tokenize.Literal("^"),
	tokenize.Literal("!"),
	tokenize.Literal("("),
	tokenize.Literal(")"),
	tokenize.Regex(`\d+`, "NUMBER"),
)

func binary(op tokenize.Match, l, r string) string {
	return fmt.Sprintf("(%s %s %s)", l, op.Lexeme, r)
}

// render builds a grammar that prints the tree it parses.
func render() *Builder[string] {
	return NewBuilder[string](testTokens).
		RegisterPrefix("NUMBER", func(_ *Parser[string], tok tokenize.Match) (string, error) {
			return tok.Lexeme, nil
		}).
		RegisterPrefix("(", Parentheses[string](")")).
		InfixLeft("+", 1, binary).
		InfixLeft("-", 1, binary).
		InfixLeft("*", 2, binary).
		InfixRight("^", 3, binary).
		Postfix("!", 4, func(_ tokenize.Match, l string) string { return l + "!" }).
		Prefix("-", 5, func(_ tokenize.Match, o string) string { return "-" + o })
}

func TestParsePrecedence(t *testing.T) {
	parse := render().Construct()

	tests := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"2 + 3 * 4", "(2 + (3 * 4))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"2 ^ 3 * 4", "((2 ^ 3) * 4)"},
		{"-4 + 5", "(-4 + 5)"},
		{"3! * 2", "(3! * 2)"},
		{"1 + 2!", "(1 + 2!)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"((7))", "7"},
		{"--1", "--1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	parse := render().Construct()

	tests := []struct {
		in     string
		msg    string
		lexeme string
	}{
		{"", "unexpected end of input", ""},
		{"1 +", "unexpected end of input", ""},
		{"* 2", "no prefix handler", "*"},
		{"(1 + 2", "expected closing parenthesis", ""},
		{"(1 2)", "expected closing parenthesis", "2"},
		{"1 + 2)", "unexpected token", ")"},
		{"1 2", "unexpected token", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := parse(tt.in)
			var pErr *Error
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, tt.msg, pErr.Msg)
			assert.Equal(t, tt.lexeme, pErr.Lexeme)
		})
	}
}

func TestParseTokenizeError(t *testing.T) {
	parse := render().Construct()

	_, err := parse("1 + x")
	var tErr *tokenize.Error
	assert.ErrorAs(t, err, &tErr)
}

func TestBuilderLastRegistrationWins(t *testing.T) {
	b := render()
	before := b.Construct()

	b.InfixLeft("^", 3, binary)
	after := b.Construct()

	got, err := before("2 ^ 3 ^ 2")
	require.NoError(t, err)
	assert.Equal(t, "(2 ^ (3 ^ 2))", got)

	got, err = after("2 ^ 3 ^ 2")
	require.NoError(t, err)
	assert.Equal(t, "((2 ^ 3) ^ 2)", got)
}

func TestConstructTokens(t *testing.T) {
	parse := render().ConstructTokens()
	tokens, err := testTokens.Tokenize("1 + 2 * 3")
	require.NoError(t, err)

	got, err := parse(tokens)
	require.NoError(t, err)
	assert.Equal(t, "(1 + (2 * 3))", got)
}

func TestParserCursor(t *testing.T) {
	tokens, err := testTokens.Tokenize("( 1 )")
	require.NoError(t, err)

	p := NewParser[string](tokens, Table[string]{})
	tok, ok := p.Peek()
	require.True(t, ok)
	assert.Equal(t, tokenize.Kind("("), tok.Kind)

	assert.False(t, p.Match(")"))
	assert.True(t, p.Match("("))
	assert.Error(t, p.Expect(")", "want close"))
	_, err = p.Next()
	require.NoError(t, err)
	assert.NoError(t, p.Expect(")", "want close"))
	assert.True(t, p.Done())

	_, err = p.Next()
	assert.Error(t, err)
}
