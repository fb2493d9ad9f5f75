package command

import (
	"strings"
)

// Input is one parsed line of user text.
type Input struct {
	Name string
	Args string
	Raw  string
	// Prefixed is set when the line was addressed to the bot with "/" or "!".
	Prefixed bool
}

var aliases = map[string]string{
	"r": "roll",
	"c": "calc",
}

func canonical(name string) string {
	name = strings.ToLower(name)
	if full, ok := aliases[name]; ok {
		return full
	}
	return name
}

// Parse splits a line into a command and its arguments.
//
//	"/roll 2d6"       → roll "2d6"
//	"/r@DiceBot 2d6"  → roll "2d6"
//	"!2d6 + 3"        → roll "2d6 + 3"
//	"vars"            → vars ""
//	"a = d20"         → roll "a = d20"
//
// Bare text that does not start with a command name is a roll.
func Parse(text string) Input {
	in := Input{Raw: text}
	text = strings.TrimSpace(text)
	if text == "" {
		return in
	}

	switch text[0] {
	case '/':
		in.Prefixed = true
		word, rest := split(text[1:])
		if at := strings.IndexByte(word, '@'); at >= 0 {
			word = word[:at]
		}
		in.Name = canonical(word)
		in.Args = rest
		return in
	case '!':
		in.Prefixed = true
		in.Name = "roll"
		in.Args = strings.TrimSpace(text[1:])
		return in
	}

	// Aliases are not honoured here: a bare "r" is more likely a variable.
	word, rest := split(text)
	if _, ok := registry[strings.ToLower(word)]; ok {
		in.Name = strings.ToLower(word)
		in.Args = rest
		return in
	}
	in.Name = "roll"
	in.Args = text
	return in
}

func split(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
