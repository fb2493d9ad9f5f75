package session

import (
	"strings"

	"github.com/suderio/rolldice/internal/dice"
	"github.com/suderio/rolldice/internal/env"
)

// Reply is what a command produced, one display line per entry.
type Reply struct {
	Command string
	Source  string
	Result  *dice.Result
	Lines   []string
}

// Text joins the lines for display.
func (r *Reply) Text() string {
	return strings.Join(r.Lines, "\n")
}

// journalingView writes every assignment to the journal before applying it.
// A failed write is kept and surfaced once evaluation returns.
type journalingView struct {
	*env.View
	store Store
	err   error
}

func (v *journalingView) Set(name, value string) {
	if v.err != nil {
		return
	}
	evt := &env.VariableSetEvent{Meta: env.NewMeta(), User: v.User(), Name: name, Value: value}
	if err := v.store.Append(evt); err != nil {
		v.err = err
		return
	}
	v.View.Set(name, value)
}
