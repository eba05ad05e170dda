package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/parser"
	"github.com/podhmo/minilox/scanner"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	program, errs := parser.Parse(scanner.Scan(src, nil))
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return program
}

// depths collects "name@line" -> depth for every resolved read, and
// "name@line" -> -1 for reads left to the outward lookup. Assignments are
// keyed "name=@line".
func depths(program []ast.Stmt, table Table) map[string]int {
	got := map[string]int{}
	var visitExpr func(ast.Expr)
	var visitStmt func(ast.Stmt)
	record := func(x ast.Expr, name string, line int) {
		key := name + "@" + string(rune('0'+line))
		if d, ok := table.Depth(x); ok {
			got[key] = d
		} else {
			got[key] = -1
		}
	}
	visitExpr = func(x ast.Expr) {
		switch x := x.(type) {
		case *ast.Variable:
			record(x, x.Name.Lexeme, x.Name.Line)
		case *ast.Assign:
			visitExpr(x.Value)
			record(x, x.Name.Lexeme+"=", x.Name.Line)
		case *ast.Binary:
			visitExpr(x.Left)
			visitExpr(x.Right)
		case *ast.Call:
			visitExpr(x.Callee)
			for _, a := range x.Args {
				visitExpr(a)
			}
		}
	}
	visitStmt = func(s ast.Stmt) {
		switch s := s.(type) {
		case *ast.Print:
			visitExpr(s.X)
		case *ast.Expression:
			visitExpr(s.X)
		case *ast.Var:
			if s.Init != nil {
				visitExpr(s.Init)
			}
		case *ast.Return:
			if s.Value != nil {
				visitExpr(s.Value)
			}
		case *ast.Block:
			for _, s := range s.Stmts {
				visitStmt(s)
			}
		case *ast.Function:
			for _, s := range s.Body {
				visitStmt(s)
			}
		}
	}
	for _, s := range program {
		visitStmt(s)
	}
	return got
}

func TestResolve_Depths(t *testing.T) {
	src := `var g = 1;
print g;
{ var a = 1; { print a; a = 2; } }
fun outer(p) { var l = p; fun inner() { return l + p + g; } return inner; }
{ fun rec(n) { return rec(n); } }`

	program := parse(t, src)
	table, errs := Resolve(program)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := map[string]int{
		"g@2":     -1, // global
		"a@3":     1,  // one block out
		"a=@3":    -1, // assignments walk outward at run time
		"p@4":     1,  // from inner's frame, p lives in outer's frame
		"l@4":     1,
		"g@4":     -1,
		"inner@4": 0,
		"rec@5":   1,  // the function's own name lives in the enclosing block
		"n@5":     0,
	}
	if diff := cmp.Diff(want, depths(program, table)); diff != "" {
		t.Errorf("depths mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Shadowing(t *testing.T) {
	program := parse(t, "{ var x = 1; { var x = 2; print x; } print x; }")
	table, errs := Resolve(program)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	outer := program[0].(*ast.Block)
	inner := outer.Stmts[1].(*ast.Block)
	innerRead := inner.Stmts[1].(*ast.Print).X
	outerRead := outer.Stmts[2].(*ast.Print).X

	if d, ok := table.Depth(innerRead); !ok || d != 0 {
		t.Errorf("inner x: got depth=%d ok=%v, want 0", d, ok)
	}
	if d, ok := table.Depth(outerRead); !ok || d != 0 {
		t.Errorf("outer x: got depth=%d ok=%v, want 0", d, ok)
	}
}

func TestResolve_OwnInitializer(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		_, errs := Resolve(parse(t, "var a = 1;\n{ var a = a; }"))
		if len(errs) != 1 {
			t.Fatalf("want 1 error, got %v", errs)
		}
		want := "[line 2] Error at 'a': Can't read local variable in its own initializer."
		if got := errs[0].Error(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
	t.Run("global is allowed", func(t *testing.T) {
		_, errs := Resolve(parse(t, "var a = 1; var a = a;"))
		if len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})
}

func TestResolve_Idempotent(t *testing.T) {
	program := parse(t, "{ var a = 1; fun f() { return a; } print f(); }")
	first, _ := Resolve(program)
	second, _ := Resolve(program)
	if diff := cmp.Diff(depths(program, first), depths(program, second)); diff != "" {
		t.Errorf("resolving twice differs (-first +second):\n%s", diff)
	}
}
