package parser

import (
	"fmt"

	"github.com/tapeforge/tapecc/internal/pos"
)

// ParsingError is the only error the parser returns. Label is always
// "MalformedBrackets" per spec.md §4.B — the parser has exactly one
// failure mode, unmatched or misnested bracket structure.
type ParsingError struct {
	Label   string
	Message string
	Span    pos.Span
}

func (e ParsingError) Error() string {
	return fmt.Sprintf("%s: %s @ %s", e.Label, e.Message, e.Span)
}

func malformed(message string, span pos.Span) error {
	return ParsingError{Label: "MalformedBrackets", Message: message, Span: span}
}
