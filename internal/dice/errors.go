package dice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDice is returned for rolls with no sides or too many dice.
	ErrInvalidDice = errors.New("invalid dice")
	// ErrDivideByZero is returned for x/0 and 0^-n.
	ErrDivideByZero = errors.New("division by zero")
	// ErrOverflow is returned when a result does not fit in an int.
	ErrOverflow = errors.New("result out of range")
)

// NameError reports a reference to a variable that is not set.
type NameError struct {
	Name string
	Err  error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("name %q is not defined", e.Name)
}

func (e *NameError) Unwrap() error { return e.Err }

// AssignmentError reports an assignment whose target is not a bare name.
type AssignmentError struct {
	Target string
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("cannot assign to non-name %q", e.Target)
}

// CyclicReferenceError reports a variable that refers back to itself, or a
// chain of references nested deeper than the engine allows.
type CyclicReferenceError struct {
	Chain    []string
	MaxDepth int
}

func (e *CyclicReferenceError) Error() string {
	chain := strings.Join(e.Chain, " → ")
	if e.MaxDepth > 0 {
		return fmt.Sprintf("variable references nested deeper than %d: %s", e.MaxDepth, chain)
	}
	return fmt.Sprintf("cyclic variable reference: %s", chain)
}
