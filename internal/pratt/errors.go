package pratt

import (
	"fmt"

	"github.com/suderio/rolldice/internal/tokenize"
)

// Error is a malformed expression. Lexeme is the offending token and is
// empty when the input ended early.
type Error struct {
	Msg    string
	Lexeme string
	Offset int
}

func errorAt(msg string, tok tokenize.Match) *Error {
	return &Error{Msg: msg, Lexeme: tok.Lexeme, Offset: tok.Offset}
}

func (e *Error) Error() string {
	if e.Lexeme == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %q at offset %d", e.Msg, e.Lexeme, e.Offset)
}
