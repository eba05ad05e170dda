package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/scanner"
)

func parse(t *testing.T, src string) ([]ast.Stmt, ErrorList) {
	t.Helper()
	var scanErrs scanner.ErrorList
	tokens := scanner.Scan(src, scanErrs.Add)
	if len(scanErrs) > 0 {
		t.Fatalf("scan errors: %v", scanErrs)
	}
	return Parse(tokens)
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			input: "1 + 2 * 3;",
			want: `Expression
└── Binary (+)
    ├── Number (1)
    └── Binary (*)
        ├── Number (2)
        └── Number (3)
`,
		},
		{
			input: "1 - 2 - 3;",
			want: `Expression
└── Binary (-)
    ├── Binary (-)
    │   ├── Number (1)
    │   └── Number (2)
    └── Number (3)
`,
		},
		{
			input: "a = b = 1;",
			want: `Expression
└── Assign (a)
    └── Assign (b)
        └── Number (1)
`,
		},
		{
			input: "a or b and !c == -d % 2;",
			want: `Expression
└── Logical (or)
    ├── Variable (a)
    └── Logical (and)
        ├── Variable (b)
        └── Binary (==)
            ├── Unary (!)
            │   └── Variable (c)
            └── Binary (%)
                ├── Unary (-)
                │   └── Variable (d)
                └── Number (2)
`,
		},
		{
			input: `f(1)("s")();`,
			want: `Expression
└── Call
    └── Call
        ├── Call
        │   ├── Variable (f)
        │   └── Number (1)
        └── String (s)
`,
		},
		{
			input: "1 <= (2) == true;",
			want: `Expression
└── Binary (==)
    ├── Binary (<=)
    │   ├── Number (1)
    │   └── Grouping
    │       └── Number (2)
    └── Boolean (true)
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program, errs := parse(t, tt.input)
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if diff := cmp.Diff(tt.want, ast.Sprint(program)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Statements(t *testing.T) {
	src := `
var x;
fun add(a, b) { return a + b; }
if (x) print 1; else { print 2; }
while (true) { break; continue; }
return;
`
	want := `Var (x)
Fun add(a, b)
└── Return
    └── Binary (+)
        ├── Variable (a)
        └── Variable (b)
If
├── Variable (x)
├── Print
│   └── Number (1)
└── Else
    └── Block
        └── Print
            └── Number (2)
While
├── Boolean (true)
└── Block
    ├── Break
    └── Continue
Return
`
	program, errs := parse(t, src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if diff := cmp.Diff(want, ast.Sprint(program)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ForDesugaring(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		program, errs := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
		if len(errs) > 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		want := `Block
├── Var (i)
│   └── Number (0)
└── While
    ├── Binary (<)
    │   ├── Variable (i)
    │   └── Number (3)
    └── Block
        ├── Print
        │   └── Variable (i)
        └── Expression
            └── Assign (i)
                └── Binary (+)
                    ├── Variable (i)
                    └── Number (1)
`
		if diff := cmp.Diff(want, ast.Sprint(program)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		loop := program[0].(*ast.Block).Stmts[1].(*ast.While)
		body := loop.Body.(*ast.Block)
		if loop.Increment == nil || body.Stmts[1].(*ast.Expression).X != loop.Increment {
			t.Errorf("Increment should be the trailing expression of the body")
		}
	})

	t.Run("empty clauses", func(t *testing.T) {
		program, errs := parse(t, "for (;;) print 1;")
		if len(errs) > 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		want := `While
├── Boolean (true)
└── Print
    └── Number (1)
`
		if diff := cmp.Diff(want, ast.Sprint(program)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "missing semicolon",
			input: "print 1",
			want:  []string{"[line 1] Error at end: Expect ';' after value."},
		},
		{
			name:  "invalid assignment target",
			input: "1 + 2 = 3;",
			want:  []string{"[line 1] Error at '=': Invalid assignment target."},
		},
		{
			name:  "two independent errors",
			input: "var = 1;\nprint 2;\nprint (3;\nprint 4;",
			want: []string{
				"[line 1] Error at '=': Expect variable name.",
				"[line 3] Error at ';': Expect ')' after expression.",
			},
		},
		{
			name:  "unclosed block",
			input: "{ print 1;",
			want:  []string{"[line 1] Error at end: Expect '}' after block."},
		},
		{
			name:  "error inside function body",
			input: "fun f() { print ; }\nprint 1 1;",
			want: []string{
				"[line 1] Error at ';': Expect expression.",
				"[line 2] Error at '1': Expect ';' after value.",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parse(t, tt.input)
			var got []string
			for _, e := range errs {
				got = append(got, e.Error())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_RecoversValidDeclarations(t *testing.T) {
	program, errs := parse(t, "print ;\nvar ok = 1;\nprint ok;")
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	if len(program) != 2 {
		t.Fatalf("want the 2 valid declarations kept, got %d", len(program))
	}
}

func TestParse_ArgumentLimit(t *testing.T) {
	args := make([]string, MaxArgs+1)
	for i := range args {
		args[i] = "1"
	}
	_, errs := parse(t, "f("+strings.Join(args, ", ")+");")
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0].Msg, "more than 255 arguments") {
		t.Errorf("unexpected message: %s", errs[0].Msg)
	}

	_, errs = parse(t, "f("+strings.Join(args[:MaxArgs], ", ")+");")
	if len(errs) != 0 {
		t.Errorf("255 arguments should parse, got %v", errs)
	}
}

func TestParse_ParameterLimit(t *testing.T) {
	params := make([]string, MaxArgs+1)
	for i := range params {
		params[i] = fmt.Sprintf("p%d", i)
	}
	_, errs := parse(t, "fun f("+strings.Join(params, ", ")+") {}")
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	if got, want := errs[0].Error(), "[line 1] Error at 'p255': Can't have more than 255 parameters."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	_, errs = parse(t, "fun f("+strings.Join(params[:MaxArgs], ", ")+") {}")
	if len(errs) != 0 {
		t.Errorf("255 parameters should parse, got %v", errs)
	}
}
