package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// ErrNotBool is returned when a filter evaluates to something other than a
// boolean.
var ErrNotBool = errors.New("filter did not return a bool")

// RollFunc rolls a dice expression for the roll() CEL function.
type RollFunc func(expr string) (int, error)

// Registry manages the CEL environment that filter expressions compile
// against.
type Registry struct {
	env *cel.Env
}

// NewRegistry declares the message variables and, when roll is not nil, a
// roll(string) function so filters can gate on chance.
func NewRegistry(roll RollFunc) (*Registry, error) {
	opts := []cel.EnvOption{
		cel.Variable("user", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("chat", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("text", cel.StringType),
		cel.Variable("command", cel.StringType),
	}
	if roll != nil {
		opts = append(opts, cel.Function("roll",
			cel.Overload("roll_string",
				[]*cel.Type{cel.StringType},
				cel.IntType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					s, ok := arg.Value().(string)
					if !ok {
						return types.NewErr("roll expects a string")
					}
					v, err := roll(s)
					if err != nil {
						return types.NewErr("roll(%q): %v", s, err)
					}
					return types.Int(v)
				}),
			),
		))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, err
	}
	return &Registry{env: env}, nil
}

// Compile checks expression and prepares it for repeated evaluation.
func (r *Registry) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return &Filter{}, nil
	}
	ast, iss := r.env.Compile(expression)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", iss.Err())
	}
	prog, err := r.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter program: %w", err)
	}
	return &Filter{source: expression, prog: prog}, nil
}

// Filter decides whether a message should be handled.
type Filter struct {
	source string
	prog   cel.Program
}

// NewFilter compiles expression in a registry without roll().
func NewFilter(expression string) (*Filter, error) {
	r, err := NewRegistry(nil)
	if err != nil {
		return nil, err
	}
	return r.Compile(expression)
}

// String is the expression the filter was compiled from.
func (f *Filter) String() string { return f.source }

// Allow evaluates the filter. An empty filter allows everything.
func (f *Filter) Allow(m MessageContext) (bool, error) {
	if f == nil || f.prog == nil {
		return true, nil
	}
	out, _, err := f.prog.Eval(Activation(m))
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %v", ErrNotBool, out.Type())
	}
	return b, nil
}
