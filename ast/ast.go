// Package ast declares the syntax tree produced by the parser.
//
// Nodes are created once by the parser and never mutated afterwards. The
// resolver keys its table on the identity of *Variable and *Assign nodes,
// so nodes must be shared by pointer, never copied.
//
// Scope shape: every *Block opens exactly one scope, and every call of a
// *Function opens exactly one scope holding its parameters and the
// top-level statements of its body. The resolver and the evaluator both
// follow this rule; nothing else opens a scope.
package ast

import "github.com/podhmo/minilox/token"

// Node is implemented by all syntax tree nodes.
type Node interface {
	// Line reports the source line the node is attributed to in diagnostics.
	Line() int
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// ----------------------------------------
// Expressions

type (
	// Literal is a constant. Value is nil, bool, float64 or string.
	Literal struct {
		Token token.Token
		Value any
	}

	// Unary is a prefix operator expression: !x, -x.
	Unary struct {
		Op    token.Token
		Right Expr
	}

	// Binary is an arithmetic, comparison or equality expression.
	Binary struct {
		Left  Expr
		Op    token.Token
		Right Expr
	}

	// Logical is a short-circuiting and/or expression.
	Logical struct {
		Left  Expr
		Op    token.Token
		Right Expr
	}

	// Grouping is a parenthesized expression.
	Grouping struct {
		Inner Expr
	}

	// Variable is a read of a named variable.
	Variable struct {
		Name token.Token
	}

	// Assign stores the result of Value into an existing variable.
	Assign struct {
		Name  token.Token
		Value Expr
	}

	// Call is a function call. Paren is the closing parenthesis.
	Call struct {
		Callee Expr
		Paren  token.Token
		Args   []Expr
	}
)

func (x *Literal) Line() int  { return x.Token.Line }
func (x *Unary) Line() int    { return x.Op.Line }
func (x *Binary) Line() int   { return x.Op.Line }
func (x *Logical) Line() int  { return x.Op.Line }
func (x *Grouping) Line() int { return x.Inner.Line() }
func (x *Variable) Line() int { return x.Name.Line }
func (x *Assign) Line() int   { return x.Name.Line }
func (x *Call) Line() int     { return x.Paren.Line }

func (*Literal) exprNode()  {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Logical) exprNode()  {}
func (*Grouping) exprNode() {}
func (*Variable) exprNode() {}
func (*Assign) exprNode()   {}
func (*Call) exprNode()     {}

// ----------------------------------------
// Statements

type (
	// Expression evaluates X and discards the result.
	Expression struct {
		X Expr
	}

	// Print evaluates X and emits its textual form as one output line.
	Print struct {
		Keyword token.Token
		X       Expr
	}

	// Var declares Name in the current scope. Init may be nil.
	Var struct {
		Name token.Token
		Init Expr
	}

	// Block is a braced statement list; it opens one scope.
	Block struct {
		Brace token.Token
		Stmts []Stmt
	}

	// If executes Then or Else (which may be nil).
	If struct {
		Keyword token.Token
		Cond    Expr
		Then    Stmt
		Else    Stmt
	}

	// While repeats Body while Cond holds.
	//
	// Increment is only set for loops desugared from a for statement, where
	// it is also the last statement of Body. It is evaluated in place of the
	// skipped tail of Body when a continue aborts an iteration.
	While struct {
		Keyword   token.Token
		Cond      Expr
		Body      Stmt
		Increment Expr
	}

	// Break leaves the innermost loop.
	Break struct {
		Keyword token.Token
	}

	// Continue starts the next iteration of the innermost loop.
	Continue struct {
		Keyword token.Token
	}

	// Function declares a named closure.
	Function struct {
		Name   token.Token
		Params []token.Token
		Body   []Stmt
	}

	// Return leaves the enclosing function. Value may be nil.
	Return struct {
		Keyword token.Token
		Value   Expr
	}
)

func (s *Expression) Line() int { return s.X.Line() }
func (s *Print) Line() int      { return s.Keyword.Line }
func (s *Var) Line() int        { return s.Name.Line }
func (s *Block) Line() int      { return s.Brace.Line }
func (s *If) Line() int         { return s.Keyword.Line }
func (s *While) Line() int      { return s.Keyword.Line }
func (s *Break) Line() int      { return s.Keyword.Line }
func (s *Continue) Line() int   { return s.Keyword.Line }
func (s *Function) Line() int   { return s.Name.Line }
func (s *Return) Line() int     { return s.Keyword.Line }

func (*Expression) stmtNode() {}
func (*Print) stmtNode()      {}
func (*Var) stmtNode()        {}
func (*Block) stmtNode()      {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*Break) stmtNode()      {}
func (*Continue) stmtNode()   {}
func (*Function) stmtNode()   {}
func (*Return) stmtNode()     {}
