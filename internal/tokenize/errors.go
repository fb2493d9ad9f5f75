package tokenize

import "fmt"

// Error reports input that no pattern recognises.
type Error struct {
	Source string
	Offset int
	Err    error
}

func (e *Error) Error() string {
	rest := ""
	if e.Offset >= 0 && e.Offset <= len(e.Source) {
		rest = e.Source[e.Offset:]
	}
	if r := []rune(rest); len(r) > 16 {
		rest = string(r[:16]) + "..."
	}
	return fmt.Sprintf("could not tokenize %q at offset %d", rest, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Err
}
