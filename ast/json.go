package ast

import (
	"encoding/json"
	"io"

	"github.com/iancoleman/orderedmap"
)

// FprintJSON writes a JSON representation of the program to w. Every node
// object starts with its "type" and "line" keys.
func FprintJSON(w io.Writer, program []Stmt) error {
	nodes := make([]any, len(program))
	for i, s := range program {
		nodes[i] = stmtJSON(s)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(nodes)
}

func node(typ string, n Node) *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	m.Set("type", typ)
	m.Set("line", n.Line())
	return m
}

func stmtJSON(s Stmt) any {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *Expression:
		m := node("Expression", s)
		m.Set("expr", exprJSON(s.X))
		return m
	case *Print:
		m := node("Print", s)
		m.Set("expr", exprJSON(s.X))
		return m
	case *Var:
		m := node("Var", s)
		m.Set("name", s.Name.Lexeme)
		m.Set("init", exprJSON(s.Init))
		return m
	case *Block:
		m := node("Block", s)
		m.Set("stmts", stmtsJSON(s.Stmts))
		return m
	case *If:
		m := node("If", s)
		m.Set("cond", exprJSON(s.Cond))
		m.Set("then", stmtJSON(s.Then))
		m.Set("else", stmtJSON(s.Else))
		return m
	case *While:
		m := node("While", s)
		m.Set("cond", exprJSON(s.Cond))
		m.Set("body", stmtJSON(s.Body))
		return m
	case *Break:
		return node("Break", s)
	case *Continue:
		return node("Continue", s)
	case *Function:
		m := node("Function", s)
		m.Set("name", s.Name.Lexeme)
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.Lexeme
		}
		m.Set("params", params)
		m.Set("body", stmtsJSON(s.Body))
		return m
	case *Return:
		m := node("Return", s)
		m.Set("value", exprJSON(s.Value))
		return m
	}
	return nil
}

func stmtsJSON(stmts []Stmt) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = stmtJSON(s)
	}
	return out
}

func exprJSON(x Expr) any {
	if x == nil {
		return nil
	}
	switch x := x.(type) {
	case *Literal:
		m := node("Literal", x)
		m.Set("value", x.Value)
		return m
	case *Unary:
		m := node("Unary", x)
		m.Set("op", x.Op.Lexeme)
		m.Set("right", exprJSON(x.Right))
		return m
	case *Binary:
		m := node("Binary", x)
		m.Set("op", x.Op.Lexeme)
		m.Set("left", exprJSON(x.Left))
		m.Set("right", exprJSON(x.Right))
		return m
	case *Logical:
		m := node("Logical", x)
		m.Set("op", x.Op.Lexeme)
		m.Set("left", exprJSON(x.Left))
		m.Set("right", exprJSON(x.Right))
		return m
	case *Grouping:
		m := node("Grouping", x)
		m.Set("inner", exprJSON(x.Inner))
		return m
	case *Variable:
		m := node("Variable", x)
		m.Set("name", x.Name.Lexeme)
		return m
	case *Assign:
		m := node("Assign", x)
		m.Set("name", x.Name.Lexeme)
		m.Set("value", exprJSON(x.Value))
		return m
	case *Call:
		m := node("Call", x)
		m.Set("callee", exprJSON(x.Callee))
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			args[i] = exprJSON(a)
		}
		m.Set("args", args)
		return m
	}
	return nil
}
