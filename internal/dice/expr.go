package dice

import (
	"fmt"
	"strconv"
)

// Expr is a node of a parsed dice expression. The set of nodes is closed;
// see the types in this file.
type Expr interface {
	expr()
}

// Op is a binary arithmetic operator.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpPow Op = "^"
)

// Literal is an integer constant.
type Literal struct {
	Value int
}

// Roll is NdS or NdSkK. Keep 0 keeps every die.
type Roll struct {
	Count  int
	Sides  int
	Keep   int
	Source string
}

// Name is a variable reference.
type Name struct {
	Name string
}

// Binary applies Op to two operands.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

// Negate is unary minus.
type Negate struct {
	Operand Expr
}

// Bang collapses its operand to a plain number.
type Bang struct {
	Operand Expr
}

// Advantage evaluates its operand twice and keeps the higher run.
type Advantage struct {
	Operand Expr
}

// Disadvantage evaluates its operand twice and keeps the lower run.
type Disadvantage struct {
	Operand Expr
}

// Assign stores the trace of Value under Target, which must be a Name.
type Assign struct {
	Target Expr
	Value  Expr
}

func (Literal) expr()      {}
func (Roll) expr()         {}
func (Name) expr()         {}
func (Binary) expr()       {}
func (Negate) expr()       {}
func (Bang) expr()         {}
func (Advantage) expr()    {}
func (Disadvantage) expr() {}
func (Assign) expr()       {}

func (r Roll) String() string {
	if r.Source != "" {
		return r.Source
	}
	s := fmt.Sprintf("%dd%d", r.Count, r.Sides)
	if r.Keep > 0 {
		s += "k" + strconv.Itoa(r.Keep)
	}
	return s
}

// Render writes e back as source text that parses to an equivalent tree.
func Render(e Expr) string {
	switch n := e.(type) {
	case Literal:
		if n.Value < 0 {
			return "(" + strconv.Itoa(n.Value) + ")"
		}
		return strconv.Itoa(n.Value)
	case Roll:
		return n.String()
	case Name:
		return n.Name
	case Binary:
		return fmt.Sprintf("(%s %s %s)", Render(n.Left), n.Op, Render(n.Right))
	case Negate:
		return "-" + Render(n.Operand)
	case Bang:
		if _, ok := n.Operand.(Negate); ok {
			return "(" + Render(n.Operand) + ")!"
		}
		return Render(n.Operand) + "!"
	case Advantage:
		return "(" + Render(n.Operand) + " @advantage)"
	case Disadvantage:
		return "(" + Render(n.Operand) + " @disadvantage)"
	case Assign:
		return "(" + Render(n.Target) + " = " + Render(n.Value) + ")"
	default:
		panic(fmt.Sprintf("dice: unknown expression %T", e))
	}
}
