package dice

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// maxSides keeps the sum of MaxDice dice well inside an int.
const maxSides = math.MaxInt32

// evaluator carries the state of one evaluation call.
type evaluator struct {
	engine *Engine
	env    Env
	// resolving is the stack of variables being expanded.
	resolving []string
	// frozen holds values already collapsed by "!" during this call.
	frozen map[string]int
	// steps counts evaluated nodes and rolled dice against maxSteps.
	steps int
}

func (ev *evaluator) spend(n int) error {
	ev.steps += n
	if ev.steps > ev.engine.maxSteps {
		return fmt.Errorf("%w: expression needs more than %d steps", ErrOverflow, ev.engine.maxSteps)
	}
	return nil
}

func (ev *evaluator) eval(e Expr) (Result, error) {
	if err := ev.spend(1); err != nil {
		return Result{}, err
	}
	switch n := e.(type) {
	case Literal:
		return Result{Value: n.Value, Trace: strconv.Itoa(n.Value)}, nil
	case Roll:
		return ev.roll(n)
	case Name:
		return ev.name(n)
	case Binary:
		return ev.binary(n)
	case Negate:
		res, err := ev.eval(n.Operand)
		if err != nil {
			return Result{}, err
		}
		if res.Value == math.MinInt {
			return Result{}, fmt.Errorf("%w: -(%d)", ErrOverflow, res.Value)
		}
		return Result{Value: -res.Value, Trace: "-" + res.Trace, Messages: res.Messages}, nil
	case Bang:
		return ev.bang(n)
	case Advantage:
		return ev.pick(n.Operand, true)
	case Disadvantage:
		return ev.pick(n.Operand, false)
	case Assign:
		return ev.assign(n)
	default:
		return Result{}, fmt.Errorf("unknown expression %T", e)
	}
}

func (ev *evaluator) roll(r Roll) (Result, error) {
	if r.Sides < 1 || r.Sides > maxSides || r.Count < 1 || r.Count > ev.engine.maxDice {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidDice, r)
	}
	if err := ev.spend(r.Count); err != nil {
		return Result{}, err
	}

	rolls := make([]int, r.Count)
	for i := range rolls {
		rolls[i] = ev.engine.roller.Roll(r.Sides)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))

	keep := r.Keep
	if keep == 0 || keep > r.Count {
		keep = r.Count
	}
	kept, dropped := rolls[:keep], rolls[keep:]

	total := 0
	for _, v := range kept {
		var err error
		if total, err = add(total, v); err != nil {
			return Result{}, err
		}
	}

	text := fmt.Sprintf("%s → [%s]", r, joinInts(kept))
	if len(dropped) > 0 {
		text = fmt.Sprintf("%s → [%s,~~%s~~]", r, joinInts(kept), joinInts(dropped))
	}
	msgs := []Message{{Kind: RollResult, Text: text}}

	if len(kept) == 1 && r.Sides == 20 {
		switch kept[0] {
		case 20:
			msgs = append(msgs, Message{Kind: RollResult, Text: "Natty!! 🍾🍾"})
		case 1:
			msgs = append(msgs, Message{Kind: RollResult, Text: "Natty... 😔"})
		}
	}
	if r.Keep > r.Count {
		msgs = append(msgs, Message{
			Kind: RollResult,
			Text: fmt.Sprintf("Warning: keeping more dice than were rolled. Ignoring keep. (in %s)", r),
		})
	}

	return Result{Value: total, Trace: r.String(), Messages: msgs}, nil
}

func (ev *evaluator) name(n Name) (Result, error) {
	for _, seen := range ev.resolving {
		if seen == n.Name {
			return Result{}, &CyclicReferenceError{Chain: ev.chain(n.Name)}
		}
	}
	if len(ev.resolving) >= ev.engine.maxDepth {
		return Result{}, &CyclicReferenceError{Chain: ev.chain(n.Name), MaxDepth: ev.engine.maxDepth}
	}

	text, err := ev.env.Get(n.Name)
	if err != nil {
		return Result{}, &NameError{Name: n.Name, Err: err}
	}
	tree, err := ev.engine.Parse(text)
	if err != nil {
		return Result{}, fmt.Errorf("in %s: %w", n.Name, err)
	}

	ev.resolving = append(ev.resolving, n.Name)
	res, err := ev.eval(tree)
	ev.resolving = ev.resolving[:len(ev.resolving)-1]
	if err != nil {
		return Result{}, err
	}

	msgs := make([]Message, 0, len(res.Messages)+1)
	msgs = append(msgs, Message{Kind: NameLookup, Text: n.Name + " → " + text})
	msgs = append(msgs, res.Messages...)
	return Result{Value: res.Value, Trace: n.Name, Messages: msgs}, nil
}

func (ev *evaluator) chain(name string) []string {
	out := make([]string, 0, len(ev.resolving)+1)
	out = append(out, ev.resolving...)
	return append(out, name)
}

func (ev *evaluator) binary(n Binary) (Result, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return Result{}, err
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return Result{}, err
	}

	var v int
	switch n.Op {
	case OpAdd:
		v, err = add(left.Value, right.Value)
	case OpSub:
		v, err = sub(left.Value, right.Value)
	case OpMul:
		v, err = mul(left.Value, right.Value)
	case OpDiv:
		v, err = floorDiv(left.Value, right.Value)
	case OpPow:
		v, err = power(left.Value, right.Value)
	default:
		err = fmt.Errorf("unknown operator %q", n.Op)
	}
	if err != nil {
		return Result{}, err
	}

	msgs := make([]Message, 0, len(left.Messages)+len(right.Messages))
	msgs = append(msgs, left.Messages...)
	msgs = append(msgs, right.Messages...)
	return Result{
		Value:    v,
		Trace:    fmt.Sprintf("(%s %s %s)", left.Trace, n.Op, right.Trace),
		Messages: msgs,
	}, nil
}

func (ev *evaluator) bang(n Bang) (Result, error) {
	name, isName := n.Operand.(Name)
	if isName {
		if v, ok := ev.frozen[name.Name]; ok {
			return Result{Value: v, Trace: strconv.Itoa(v)}, nil
		}
	}

	res, err := ev.eval(n.Operand)
	if err != nil {
		return Result{}, err
	}
	if isName {
		ev.frozen[name.Name] = res.Value
	}
	return Result{
		Value:    res.Value,
		Trace:    strconv.Itoa(res.Value),
		Messages: retag(res.Messages, BangResult),
	}, nil
}

// pick runs operand twice and keeps the higher (or lower) run. Ties keep the
// first run. Each run starts from the frozen values seen before the pick, so
// "a! @adv" rolls a twice; the kept run's freezes carry on.
func (ev *evaluator) pick(operand Expr, higher bool) (Result, error) {
	before := copyFrozen(ev.frozen)
	first, err := ev.eval(operand)
	if err != nil {
		return Result{}, err
	}
	firstFrozen := ev.frozen

	ev.frozen = before
	second, err := ev.eval(operand)
	if err != nil {
		return Result{}, err
	}

	take, other := first, second
	if (higher && second.Value > first.Value) || (!higher && second.Value < first.Value) {
		take, other = second, first
	} else {
		ev.frozen = firstFrozen
	}

	suffix := " @advantage"
	if !higher {
		suffix = " @disadvantage"
	}
	msgs := make([]Message, 0, len(take.Messages)+len(other.Messages))
	msgs = append(msgs, take.Messages...)
	msgs = append(msgs, strike(other.Messages)...)
	return Result{
		Value:    take.Value,
		Trace:    "((" + take.Trace + ")" + suffix + ")",
		Messages: msgs,
	}, nil
}

func (ev *evaluator) assign(n Assign) (Result, error) {
	target, ok := n.Target.(Name)
	if !ok {
		return Result{}, &AssignmentError{Target: Render(n.Target)}
	}
	res, err := ev.eval(n.Value)
	if err != nil {
		return Result{}, err
	}
	ev.env.Set(target.Name, res.Trace)
	delete(ev.frozen, target.Name)

	return Result{
		Value:    res.Value,
		Trace:    target.Name + " = " + res.Trace,
		Messages: without(res.Messages, RollResult),
	}, nil
}

func copyFrozen(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func add(a, b int) (int, error) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return a + b, nil
}

func sub(a, b int) (int, error) {
	if (b < 0 && a > math.MaxInt+b) || (b > 0 && a < math.MinInt+b) {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, a, b)
	}
	return a - b, nil
}

func mul(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return c, nil
}

func floorDiv(a, b int) (int, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	if a == math.MinInt && b == -1 {
		return 0, fmt.Errorf("%w: %d / %d", ErrOverflow, a, b)
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}

func power(base, exp int) (int, error) {
	if exp < 0 {
		if base == 0 {
			return 0, ErrDivideByZero
		}
		return int(math.Floor(math.Pow(float64(base), float64(exp)))), nil
	}
	switch base {
	case 0:
		if exp == 0 {
			return 1, nil
		}
		return 0, nil
	case 1:
		return 1, nil
	case -1:
		if exp%2 == 0 {
			return 1, nil
		}
		return -1, nil
	}
	if math.Abs(math.Pow(float64(base), float64(exp))) > math.MaxInt64/2 {
		return 0, fmt.Errorf("%w: %d ^ %d", ErrOverflow, base, exp)
	}
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result, nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
