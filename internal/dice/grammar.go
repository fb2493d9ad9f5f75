package dice

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/suderio/rolldice/internal/pratt"
	"github.com/suderio/rolldice/internal/tokenize"
)

// Token kinds of the dice grammar that are not plain literals.
const (
	KindAdvantage    tokenize.Kind = "ADVANTAGE"
	KindDisadvantage tokenize.Kind = "DISADVANTAGE"
	KindRoll         tokenize.Kind = "ROLL"
	KindName         tokenize.Kind = "NAME"
	KindNumber       tokenize.Kind = "NUMBER"
)

// Binding tiers, low to high.
const (
	PrecAssign = iota + 1
	PrecAt
	PrecAddSub
	PrecMulDiv
	PrecPow
	PrecBang
	PrecNegate
)

// Tokens splits dice expressions. Order matters: compound operators come
// before their prefixes and ROLL before NAME and NUMBER.
var Tokens = tokenize.MustNew(
	tokenize.Literal("+="),
	tokenize.Literal("-="),
	tokenize.Literal("+"),
	tokenize.Literal("-"),
	tokenize.Literal("*"),
	tokenize.Literal("/"),
	tokenize.Literal("^"),
	tokenize.Literal("("),
	tokenize.Literal(")"),
	tokenize.Literal("!"),
	tokenize.Literal("="),
	tokenize.Regex(`(?i)@\s*a(d(v(a(n(t(a(g(e)?)?)?)?)?)?)?)?\b`, KindAdvantage),
	tokenize.Regex(`(?i)@\s*d(i(s(a(d(v(a(n(t(a(g(e)?)?)?)?)?)?)?)?)?)?)?\b`, KindDisadvantage),
	tokenize.Regex(`(?i)(\d+)?d(\d+)(k\d+)?`, KindRoll),
	tokenize.Regex(`[a-zA-Z_](\w|\.)*`, KindName),
	tokenize.Regex(`\d+`, KindNumber),
)

var rollSpec = regexp.MustCompile(`(?i)^(\d+)?d(\d+)(?:k(\d+))?$`)

// ParseRoll reads a ROLL lexeme such as "d20", "4d6" or "4d6k3".
func ParseRoll(lexeme string) (Roll, error) {
	m := rollSpec.FindStringSubmatch(lexeme)
	if m == nil {
		return Roll{}, fmt.Errorf("%w: %q", ErrInvalidDice, lexeme)
	}
	r := Roll{Count: 1, Source: lexeme}
	var err error
	if m[1] != "" {
		if r.Count, err = strconv.Atoi(m[1]); err != nil {
			return Roll{}, fmt.Errorf("%w: %q", ErrInvalidDice, lexeme)
		}
	}
	if r.Sides, err = strconv.Atoi(m[2]); err != nil {
		return Roll{}, fmt.Errorf("%w: %q", ErrInvalidDice, lexeme)
	}
	if m[3] != "" {
		if r.Keep, err = strconv.Atoi(m[3]); err != nil {
			return Roll{}, fmt.Errorf("%w: %q", ErrInvalidDice, lexeme)
		}
	}
	return r, nil
}

func binary(op Op) func(tokenize.Match, Expr, Expr) Expr {
	return func(_ tokenize.Match, l, r Expr) Expr {
		return Binary{Op: op, Left: l, Right: r}
	}
}

// compound desugars "t += v" into "t = t! + v".
func compound(op Op) func(tokenize.Match, Expr, Expr) Expr {
	return func(_ tokenize.Match, l, r Expr) Expr {
		return Assign{Target: l, Value: Binary{Op: op, Left: Bang{Operand: l}, Right: r}}
	}
}

// Grammar returns a builder preloaded with the dice grammar.
func Grammar() *pratt.Builder[Expr] {
	return pratt.NewBuilder[Expr](Tokens).
		RegisterPrefix(KindNumber, func(_ *pratt.Parser[Expr], tok tokenize.Match) (Expr, error) {
			n, err := strconv.Atoi(tok.Lexeme)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrOverflow, tok.Lexeme)
			}
			return Literal{Value: n}, nil
		}).
		RegisterPrefix(KindRoll, func(_ *pratt.Parser[Expr], tok tokenize.Match) (Expr, error) {
			r, err := ParseRoll(tok.Lexeme)
			if err != nil {
				return nil, err
			}
			return r, nil
		}).
		RegisterPrefix(KindName, func(_ *pratt.Parser[Expr], tok tokenize.Match) (Expr, error) {
			return Name{Name: tok.Lexeme}, nil
		}).
		RegisterPrefix("(", pratt.Parentheses[Expr](")")).
		Prefix("-", PrecNegate, func(_ tokenize.Match, operand Expr) Expr {
			return Negate{Operand: operand}
		}).
		Postfix("!", PrecBang, func(_ tokenize.Match, left Expr) Expr {
			return Bang{Operand: left}
		}).
		Postfix(KindAdvantage, PrecAt, func(_ tokenize.Match, left Expr) Expr {
			return Advantage{Operand: left}
		}).
		Postfix(KindDisadvantage, PrecAt, func(_ tokenize.Match, left Expr) Expr {
			return Disadvantage{Operand: left}
		}).
		InfixRight("^", PrecPow, binary(OpPow)).
		InfixLeft("/", PrecMulDiv, binary(OpDiv)).
		InfixLeft("*", PrecMulDiv, binary(OpMul)).
		InfixLeft("+", PrecAddSub, binary(OpAdd)).
		InfixLeft("-", PrecAddSub, binary(OpSub)).
		InfixLeft("+=", PrecAssign, compound(OpAdd)).
		InfixLeft("-=", PrecAssign, compound(OpSub)).
		InfixLeft("=", PrecAssign, func(_ tokenize.Match, l, r Expr) Expr {
			return Assign{Target: l, Value: r}
		})
}

var parseSource = Grammar().Construct()

// Parse turns source into an expression tree without evaluating it.
func Parse(source string) (Expr, error) {
	return parseSource(source)
}
