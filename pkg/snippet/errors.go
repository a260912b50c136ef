package snippet

import (
	"fmt"
)

// SyntaxError reports malformed snippet grammar. It is always fatal to
// the Parse call; the caller decides whether to surface it or fall back
// to treating the body as literal text.
type SyntaxError struct {
	// State is the parser state the error was classified in, e.g.
	// "choice-list" or "transform-pattern".
	State string

	// Reason is a human-readable description of what was expected.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("snippet syntax error in %s: %s", e.State, e.Reason)
}

func syntaxErr(state parseState, reason string) error {
	return &SyntaxError{State: state.String(), Reason: reason}
}
