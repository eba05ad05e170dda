package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/podhmo/minilox/token"
)

// Error is a syntax error at a single token.
type Error struct {
	Line  int
	Where string // " at 'x'", " at end", or empty
	Msg   string
}

func newError(tok token.Token, msg string) *Error {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Kind == token.EOF {
		where = " at end"
	}
	return &Error{Line: tok.Line, Where: where, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Msg)
}

// ErrorList is the ordered list of syntax errors from one Parse call.
type ErrorList []*Error

// Sort orders the list by line, keeping discovery order for equal lines.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Line < l[j].Line })
}

// Error renders one error per line.
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	lines := make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Err returns nil for an empty list and the list itself otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
