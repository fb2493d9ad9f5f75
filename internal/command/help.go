package command

import (
	"fmt"
	"sort"
	"strings"
)

// Help describes one command.
type Help struct {
	Usage   string
	Summary string
}

var registry = map[string]Help{
	"roll": {
		Usage:   "roll <expression>",
		Summary: "Rolls dice and does arithmetic, e.g. 4d6k3 + 2, d20 @adv, a = 1d8 + 3, a += 2. Alias: r.",
	},
	"calc": {
		Usage:   "calc <expression>",
		Summary: "Plain calculator with decimals and ^, e.g. 3 / 4 + 2 ^ 0.5. Alias: c.",
	},
	"vars": {
		Usage:   "vars",
		Summary: "Lists the variables you can use, shared ones included.",
	},
	"unset": {
		Usage:   "unset <name>",
		Summary: "Removes one of your variables.",
	},
	"help": {
		Usage:   "help [command]",
		Summary: "Shows available commands or detailed info on a specific one.",
	},
}

// Names lists every command, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the help entry of a command or alias.
func Lookup(name string) (Help, bool) {
	h, ok := registry[canonical(name)]
	return h, ok
}

// HelpText renders help for one command, or for all of them when name is
// empty or "all".
func HelpText(name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name != "" && !strings.EqualFold(name, "all") {
		help, ok := Lookup(name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		return fmt.Sprintf("Usage: %s\n%s", help.Usage, help.Summary), nil
	}

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, n := range Names() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", registry[n].Usage, registry[n].Summary))
	}
	sb.WriteString("Use 'help <command>' for details.")
	return sb.String(), nil
}
