// Package object defines the runtime values of minilox, the environment
// chain they live in, and the runtime error type.
package object

import (
	"math"
	"strconv"
	"strings"

	"github.com/podhmo/minilox/ast"
)

// ObjectType is a string representation of an object's type.
type ObjectType string

const (
	NUMBER_OBJ       ObjectType = "NUMBER"
	STRING_OBJ       ObjectType = "STRING"
	BOOLEAN_OBJ      ObjectType = "BOOLEAN"
	NIL_OBJ          ObjectType = "NIL"
	FUNCTION_OBJ     ObjectType = "FUNCTION"
	BUILTIN_OBJ      ObjectType = "BUILTIN"
	BREAK_OBJ        ObjectType = "BREAK"
	CONTINUE_OBJ     ObjectType = "CONTINUE"
	RETURN_VALUE_OBJ ObjectType = "RETURN_VALUE"
	ERROR_OBJ        ObjectType = "ERROR"
)

// Object is the interface that all runtime values implement.
type Object interface {
	// Type returns the type of the object.
	Type() ObjectType
	// Inspect returns the text `print` writes for the object.
	Inspect() string
}

// Callable is implemented by the values that can appear as a callee.
type Callable interface {
	Object
	Arity() int
	Name() string
}

// --- Number Object ---

// Number is the language's only numeric type.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// FormatNumber renders f in its shortest decimal form: 1, 2.5, 0.1.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- String Object ---

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// --- Boolean Object ---

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// --- Nil Object ---

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// --- Function Object ---

// Function is a user-defined closure. Env is the environment that was
// current when the declaration executed, not the caller's.
type Function struct {
	Decl *ast.Function
	Env  *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Name() + ">" }
func (f *Function) Arity() int       { return len(f.Decl.Params) }
func (f *Function) Name() string     { return f.Decl.Name.Lexeme }

// Params returns the parameter names in declaration order.
func (f *Function) Params() []string {
	names := make([]string, len(f.Decl.Params))
	for i, p := range f.Decl.Params {
		names[i] = p.Lexeme
	}
	return names
}

// --- Builtin Object ---

// BuiltinFunction is the host side of a native function. Returning a
// non-nil error aborts the running program.
type BuiltinFunction func(args ...Object) (Object, error)

// Builtin is a native function. It captures no environment.
type Builtin struct {
	Ident     string
	NumParams int
	Fn        BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<native fn " + b.Ident + ">" }
func (b *Builtin) Arity() int       { return b.NumParams }
func (b *Builtin) Name() string     { return b.Ident }

// --- Control signals ---

// BreakStatement is the signal raised by `break`. It's a singleton.
type BreakStatement struct{}

func (bs *BreakStatement) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakStatement) Inspect() string  { return "break" }

// ContinueStatement is the signal raised by `continue`. It's a singleton.
type ContinueStatement struct{}

func (cs *ContinueStatement) Type() ObjectType { return CONTINUE_OBJ }
func (cs *ContinueStatement) Inspect() string  { return "continue" }

// ReturnValue carries the value of a `return` up to the enclosing call.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

var (
	TRUE     = &Boolean{Value: true}
	FALSE    = &Boolean{Value: false}
	NIL      = &Nil{}
	BREAK    = &BreakStatement{}
	CONTINUE = &ContinueStatement{}
)

// NativeBool returns the shared Boolean for b.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// IsSignal reports whether o is a break, continue or return signal.
func IsSignal(o Object) bool {
	if o == nil {
		return false
	}
	switch o.Type() {
	case BREAK_OBJ, CONTINUE_OBJ, RETURN_VALUE_OBJ:
		return true
	}
	return false
}

// Describe names a value's type for error messages.
func Describe(o Object) string {
	if o == nil {
		return "<nil>"
	}
	return strings.ToLower(string(o.Type()))
}
