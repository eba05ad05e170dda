// Package resolver performs static scope resolution over a parsed program.
//
// For every variable read it records how many enclosing scopes separate the
// use from the declaring scope. The evaluator uses the recorded distance to
// pick the right environment frame directly instead of searching the chain
// by name. Reads found in no local scope are left out of the table and are
// looked up by walking outward. Assignments are not recorded: they always
// store into the nearest frame holding the name.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/token"
)

// Table maps *ast.Variable nodes to their scope distance.
// It is computed once per program and is read-only afterwards.
type Table map[ast.Expr]int

// Depth returns the distance recorded for x. ok is false for globals.
func (t Table) Depth(x ast.Expr) (depth int, ok bool) {
	depth, ok = t[x]
	return depth, ok
}

// Error is a static error found while resolving.
type Error struct {
	Line int
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Name, e.Msg)
}

// ErrorList collects the errors of one Resolve call.
type ErrorList []*Error

func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Line < l[j].Line })
}

func (l ErrorList) Error() string {
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

// Resolver walks a program with a stack of scopes that mirrors the
// environment frames the evaluator will create: one per block and one per
// function call. Each scope maps a name to whether its initializer has
// finished (declared=false, defined=true).
type Resolver struct {
	scopes []map[string]bool
	table  Table
	errors ErrorList
}

// New creates a Resolver with an empty table.
func New() *Resolver {
	return &Resolver{table: make(Table)}
}

// Resolve resolves program with a fresh Resolver.
func Resolve(program []ast.Stmt) (Table, ErrorList) {
	r := New()
	r.Resolve(program)
	return r.table, r.errors
}

// Resolve adds the resolutions for program to the table. It may be called
// repeatedly, e.g. for successive REPL lines sharing one global scope.
func (r *Resolver) Resolve(program []ast.Stmt) {
	for _, s := range program {
		r.stmt(s)
	}
}

// Table returns the table built so far.
func (r *Resolver) Table() Table { return r.table }

// Errors returns the errors found so far.
func (r *Resolver) Errors() ErrorList { return r.errors }

func (r *Resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Block:
		r.beginScope()
		r.stmts(s.Stmts)
		r.endScope()
	case *ast.Var:
		r.declare(s.Name)
		if s.Init != nil {
			r.expr(s.Init)
		}
		r.define(s.Name)
	case *ast.Function:
		// the name is usable inside its own body, for recursion
		r.declare(s.Name)
		r.define(s.Name)
		r.function(s)
	case *ast.Expression:
		r.expr(s.X)
	case *ast.Print:
		r.expr(s.X)
	case *ast.If:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.While:
		r.expr(s.Cond)
		r.stmt(s.Body)
	case *ast.Return:
		if s.Value != nil {
			r.expr(s.Value)
		}
	case *ast.Break, *ast.Continue:
	default:
		panic(fmt.Sprintf("resolver: unexpected statement %T", s))
	}
}

func (r *Resolver) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.stmt(s)
	}
}

// function resolves a function body in one scope holding the parameters,
// matching the single frame a call creates.
func (r *Resolver) function(fn *ast.Function) {
	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.stmts(fn.Body)
	r.endScope()
}

func (r *Resolver) expr(x ast.Expr) {
	switch x := x.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][x.Name.Lexeme]; ok && !defined {
				r.errorf(x.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(x, x.Name)
	case *ast.Assign:
		r.expr(x.Value)
	case *ast.Binary:
		r.expr(x.Left)
		r.expr(x.Right)
	case *ast.Logical:
		r.expr(x.Left)
		r.expr(x.Right)
	case *ast.Unary:
		r.expr(x.Right)
	case *ast.Grouping:
		r.expr(x.Inner)
	case *ast.Call:
		r.expr(x.Callee)
		for _, a := range x.Args {
			r.expr(a)
		}
	case *ast.Literal:
	default:
		panic(fmt.Sprintf("resolver: unexpected expression %T", x))
	}
}

func (r *Resolver) resolveLocal(x ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.table[x] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *Resolver) errorf(name token.Token, format string, args ...any) {
	r.errors = append(r.errors, &Error{Line: name.Line, Name: name.Lexeme, Msg: fmt.Sprintf(format, args...)})
}
