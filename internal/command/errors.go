package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/suderio/rolldice/internal/calc"
	"github.com/suderio/rolldice/internal/dice"
	"github.com/suderio/rolldice/internal/pratt"
	"github.com/suderio/rolldice/internal/tokenize"
)

// ErrUnknownCommand is returned for command names not in the registry.
var ErrUnknownCommand = errors.New("unknown command")

// Describe turns any error from evaluating user input into a one-line
// message fit to show that user.
func Describe(err error) string {
	var (
		tokErr    *tokenize.Error
		parseErr  *pratt.Error
		nameErr   *dice.NameError
		assignErr *dice.AssignmentError
		cycleErr  *dice.CyclicReferenceError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &nameErr):
		return fmt.Sprintf("name '%s' is not defined.", nameErr.Name)
	case errors.As(err, &assignErr):
		return fmt.Sprintf("Can only assign to a plain name, not %s.", assignErr.Target)
	case errors.As(err, &cycleErr):
		chain := strings.Join(cycleErr.Chain, " → ")
		if cycleErr.MaxDepth > 0 {
			return fmt.Sprintf("Variables nest more than %d deep: %s.", cycleErr.MaxDepth, chain)
		}
		return fmt.Sprintf("Variable '%s' refers to itself: %s.", cycleErr.Chain[len(cycleErr.Chain)-1], chain)
	case errors.As(err, &tokErr):
		return fmt.Sprintf("I couldn't read that: %s.", tokErr.Error())
	case errors.As(err, &parseErr):
		if parseErr.Lexeme == "" {
			return fmt.Sprintf("That expression is incomplete: %s.", parseErr.Msg)
		}
		return fmt.Sprintf("That expression doesn't parse: %s near %q.", parseErr.Msg, parseErr.Lexeme)
	case errors.Is(err, dice.ErrInvalidDice),
		errors.Is(err, dice.ErrDivideByZero),
		errors.Is(err, dice.ErrOverflow),
		errors.Is(err, calc.ErrUndefined):
		return fmt.Sprintf("Can't compute that: %s.", err.Error())
	case errors.Is(err, ErrUnknownCommand):
		return fmt.Sprintf("%s. Try /help.", capitalize(err.Error()))
	}
	return fmt.Sprintf("Something went wrong: %s", err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
