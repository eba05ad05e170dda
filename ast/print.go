package ast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes an indented tree rendering of the program to w.
//
//	Print
//	└── Binary (+)
//	    ├── Number (1)
//	    └── Number (2)
func Fprint(w io.Writer, program []Stmt) error {
	bw := bufio.NewWriter(w)
	for _, s := range program {
		writeTree(bw, stmtTree(s), "", "")
	}
	return bw.Flush()
}

// Sprint is Fprint into a string.
func Sprint(program []Stmt) string {
	var b strings.Builder
	_ = Fprint(&b, program)
	return b.String()
}

type tree struct {
	label string
	kids  []tree
}

func writeTree(w *bufio.Writer, t tree, first, rest string) {
	w.WriteString(first)
	w.WriteString(t.label)
	w.WriteByte('\n')
	for i, k := range t.kids {
		if i == len(t.kids)-1 {
			writeTree(w, k, rest+"└── ", rest+"    ")
		} else {
			writeTree(w, k, rest+"├── ", rest+"│   ")
		}
	}
}

func stmtTree(s Stmt) tree {
	switch s := s.(type) {
	case *Expression:
		return tree{"Expression", []tree{exprTree(s.X)}}
	case *Print:
		return tree{"Print", []tree{exprTree(s.X)}}
	case *Var:
		t := tree{label: fmt.Sprintf("Var (%s)", s.Name.Lexeme)}
		if s.Init != nil {
			t.kids = append(t.kids, exprTree(s.Init))
		}
		return t
	case *Block:
		return tree{"Block", stmtTrees(s.Stmts)}
	case *If:
		t := tree{"If", []tree{exprTree(s.Cond), stmtTree(s.Then)}}
		if s.Else != nil {
			t.kids = append(t.kids, tree{"Else", []tree{stmtTree(s.Else)}})
		}
		return t
	case *While:
		return tree{"While", []tree{exprTree(s.Cond), stmtTree(s.Body)}}
	case *Break:
		return tree{label: "Break"}
	case *Continue:
		return tree{label: "Continue"}
	case *Function:
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.Lexeme
		}
		return tree{fmt.Sprintf("Fun %s(%s)", s.Name.Lexeme, strings.Join(params, ", ")), stmtTrees(s.Body)}
	case *Return:
		t := tree{label: "Return"}
		if s.Value != nil {
			t.kids = append(t.kids, exprTree(s.Value))
		}
		return t
	default:
		return tree{label: fmt.Sprintf("<unknown %T>", s)}
	}
}

func stmtTrees(stmts []Stmt) []tree {
	kids := make([]tree, len(stmts))
	for i, s := range stmts {
		kids[i] = stmtTree(s)
	}
	return kids
}

func exprTree(x Expr) tree {
	switch x := x.(type) {
	case *Literal:
		return tree{label: literalLabel(x.Value)}
	case *Unary:
		return tree{fmt.Sprintf("Unary (%s)", x.Op.Lexeme), []tree{exprTree(x.Right)}}
	case *Binary:
		return tree{fmt.Sprintf("Binary (%s)", x.Op.Lexeme), []tree{exprTree(x.Left), exprTree(x.Right)}}
	case *Logical:
		return tree{fmt.Sprintf("Logical (%s)", x.Op.Lexeme), []tree{exprTree(x.Left), exprTree(x.Right)}}
	case *Grouping:
		return tree{"Grouping", []tree{exprTree(x.Inner)}}
	case *Variable:
		return tree{label: fmt.Sprintf("Variable (%s)", x.Name.Lexeme)}
	case *Assign:
		return tree{fmt.Sprintf("Assign (%s)", x.Name.Lexeme), []tree{exprTree(x.Value)}}
	case *Call:
		kids := []tree{exprTree(x.Callee)}
		for _, a := range x.Args {
			kids = append(kids, exprTree(a))
		}
		return tree{"Call", kids}
	default:
		return tree{label: fmt.Sprintf("<unknown %T>", x)}
	}
}

func literalLabel(v any) string {
	switch v := v.(type) {
	case nil:
		return "Nil"
	case bool:
		return fmt.Sprintf("Boolean (%t)", v)
	case float64:
		return fmt.Sprintf("Number (%s)", strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		return fmt.Sprintf("String (%s)", v)
	default:
		return fmt.Sprintf("Literal (%v)", v)
	}
}
