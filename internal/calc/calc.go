// Package calc is a plain floating point calculator built on the same
// parser engine as the dice grammar.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/suderio/rolldice/internal/pratt"
	"github.com/suderio/rolldice/internal/tokenize"
)

// ErrUndefined is returned when the result is infinite or not a number.
var ErrUndefined = errors.New("result is undefined")

const (
	precAddSub = iota + 1
	precMulDiv
	precExp
	precNegate
)

var tokens = tokenize.MustNew(
	tokenize.Literal("+"),
	tokenize.Literal("-"),
	tokenize.Literal("*"),
	tokenize.Literal("/"),
	tokenize.Literal("^"),
	tokenize.Literal("("),
	tokenize.Literal(")"),
	tokenize.Regex(`\d+(\.\d+)?`, "NUMBER"),
)

var calculate = pratt.NewBuilder[float64](tokens).
	RegisterPrefix("NUMBER", func(_ *pratt.Parser[float64], tok tokenize.Match) (float64, error) {
		return strconv.ParseFloat(tok.Lexeme, 64)
	}).
	RegisterPrefix("(", pratt.Parentheses[float64](")")).
	Prefix("-", precNegate, func(_ tokenize.Match, v float64) float64 { return -v }).
	InfixRight("^", precExp, func(_ tokenize.Match, l, r float64) float64 { return math.Pow(l, r) }).
	InfixLeft("/", precMulDiv, func(_ tokenize.Match, l, r float64) float64 { return l / r }).
	InfixLeft("*", precMulDiv, func(_ tokenize.Match, l, r float64) float64 { return l * r }).
	InfixLeft("+", precAddSub, func(_ tokenize.Match, l, r float64) float64 { return l + r }).
	InfixLeft("-", precAddSub, func(_ tokenize.Match, l, r float64) float64 { return l - r }).
	Construct()

// Calculate evaluates an arithmetic expression such as "3 / 3 + 4 * 3 ^ 2".
func Calculate(source string) (float64, error) {
	v, err := calculate(source)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s", ErrUndefined, source)
	}
	return v, nil
}
