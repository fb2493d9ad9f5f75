package dice

import "strings"

// MessageKind tags a side message so callers can filter them.
type MessageKind int

const (
	RollResult MessageKind = iota
	NameLookup
	BangResult
)

func (k MessageKind) String() string {
	switch k {
	case RollResult:
		return "roll"
	case NameLookup:
		return "name"
	case BangResult:
		return "bang"
	}
	return "unknown"
}

// Message is a side note produced while evaluating, such as a roll
// breakdown or a variable lookup.
type Message struct {
	Kind MessageKind
	Text string
}

// Result is the outcome of evaluating an expression. Trace is a fully
// parenthesised rendering with dice and variables left in place and
// frozen values substituted.
type Result struct {
	Value    int
	Trace    string
	Messages []Message
}

// Texts returns the message texts in evaluation order.
func (r Result) Texts() []string {
	out := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = m.Text
	}
	return out
}

func retag(msgs []Message, kind MessageKind) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{Kind: kind, Text: m.Text}
	}
	return out
}

func strike(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{Kind: m.Kind, Text: "~~" + strings.ReplaceAll(m.Text, "~~", "") + "~~"}
	}
	return out
}

func without(msgs []Message, kind MessageKind) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Kind != kind {
			out = append(out, m)
		}
	}
	return out
}
