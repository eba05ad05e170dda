package object

import (
	"bytes"
	"fmt"
)

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	DivisionByZero ErrorKind = iota + 1
	UndefinedVariable
	TypeError
	SyntaxError
	ArityError
	NativeFailure  // a native function returned an error
	StackOverflow  // the call depth limit was exceeded
	BudgetExceeded // the statement budget was exhausted
)

var kindNames = [...]string{
	DivisionByZero:    "DivisionByZero",
	UndefinedVariable: "UndefinedVariable",
	TypeError:         "TypeError",
	SyntaxError:       "SyntaxError",
	ArityError:        "ArityError",
	NativeFailure:     "NativeFailure",
	StackOverflow:     "StackOverflow",
	BudgetExceeded:    "BudgetExceeded",
}

func (k ErrorKind) String() string {
	if 0 < int(k) && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrDivisionByZero    = &Error{Kind: DivisionByZero}
	ErrUndefinedVariable = &Error{Kind: UndefinedVariable}
	ErrTypeError         = &Error{Kind: TypeError}
	ErrSyntaxError       = &Error{Kind: SyntaxError}
	ErrArityError        = &Error{Kind: ArityError}
	ErrNativeFailure     = &Error{Kind: NativeFailure}
	ErrStackOverflow     = &Error{Kind: StackOverflow}
	ErrBudgetExceeded    = &Error{Kind: BudgetExceeded}
)

// CallFrame represents a single frame in the call stack.
type CallFrame struct {
	Line     int    // line of the call expression
	Function string // name of the called function
}

// Format formats the call frame into a readable string.
func (cf CallFrame) Format() string {
	return fmt.Sprintf("\t[line %d] in %s()", cf.Line, cf.Function)
}

// Error is a runtime failure. It is both an Object and a Go error.
type Error struct {
	Kind    ErrorKind
	Line    int
	Message string

	// Expected and Actual are set for ArityError.
	Expected int
	Actual   int

	// Name is set for UndefinedVariable.
	Name string

	CallStack []CallFrame
	cause     error
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] %s: %s", e.Line, e.Kind, e.Message)
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Unwrap returns the host error behind a NativeFailure.
func (e *Error) Unwrap() error { return e.cause }

// WithCause records the host error that triggered e.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Inspect returns the error with its call stack, most recent call first.
func (e *Error) Inspect() string {
	var out bytes.Buffer
	out.WriteString("runtime error: ")
	out.WriteString(e.Error())
	out.WriteString("\n")
	for i := len(e.CallStack) - 1; i >= 0; i-- {
		out.WriteString(e.CallStack[i].Format())
		out.WriteString("\n")
	}
	out.WriteString("\tin <script>\n")
	return out.String()
}
