// Package parser implements a recursive-descent parser for minilox.
//
// Parse never stops at the first syntax error. When a declaration fails to
// parse, the error is recorded, tokens are discarded up to the next
// statement boundary, and parsing resumes, so one call can report several
// independent errors.
package parser

import (
	"strconv"

	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/token"
)

// MaxArgs bounds the number of parameters and call arguments.
const MaxArgs = 255

// Parser holds the parsing state for one token stream.
type Parser struct {
	tokens  []token.Token
	current int
	errors  ErrorList
}

// New creates a Parser. tokens must end with an EOF token, as produced by
// the scanner; one is appended if missing.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{Kind: token.EOF, Line: line})
	}
	return &Parser{tokens: tokens}
}

// Parse parses a whole program.
func Parse(tokens []token.Token) ([]ast.Stmt, ErrorList) {
	return New(tokens).Parse()
}

// Parse parses declarations until EOF. The returned program holds every
// declaration that parsed successfully; errors holds the rest.
func (p *Parser) Parse() ([]ast.Stmt, ErrorList) {
	var program []ast.Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			program = append(program, stmt)
		}
	}
	return program, p.errors
}

// declaration parses one declaration, recovering from a syntax error by
// synchronizing. It returns nil when the declaration was discarded.
func (p *Parser) declaration() ast.Stmt {
	var (
		stmt ast.Stmt
		err  error
	)
	switch {
	case p.match(token.Var):
		stmt, err = p.varDeclaration()
	case p.match(token.Fun):
		stmt, err = p.function()
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.errors = append(p.errors, err.(*Error))
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(token.Equal) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Init: init}, nil
}

func (p *Parser) function() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftParen, "Expect '(' after function name."); err != nil {
		return nil, err
	}
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= MaxArgs {
				return nil, newError(p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(token.Identifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftBrace, "Expect '{' before function body."); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.Break):
		keyword := p.previous()
		if _, err := p.consume(token.Semicolon, "Expect ';' after 'break'."); err != nil {
			return nil, err
		}
		return &ast.Break{Keyword: keyword}, nil
	case p.match(token.Continue):
		keyword := p.previous()
		if _, err := p.consume(token.Semicolon, "Expect ';' after 'continue'."); err != nil {
			return nil, err
		}
		return &ast.Continue{Keyword: keyword}, nil
	case p.match(token.LeftBrace):
		brace := p.previous()
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Brace: brace, Stmts: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
//
// A missing condition becomes the literal true.
func (p *Parser) forStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		init ast.Stmt
		err  error
	)
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr = &ast.Literal{Token: keyword, Value: true}
	if !p.check(token.Semicolon) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(token.RightParen) {
		if incr, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	loop := &ast.While{Keyword: keyword, Cond: cond, Body: body}
	if incr != nil {
		loop.Body = &ast.Block{Brace: keyword, Stmts: []ast.Stmt{body, &ast.Expression{X: incr}}}
		loop.Increment = incr
	}
	if init == nil {
		return loop, nil
	}
	return &ast.Block{Brace: keyword, Stmts: []ast.Stmt{init, loop}}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.match(token.Else) {
		if els, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return &ast.If{Keyword: keyword, Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	keyword := p.previous()
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.Print{Keyword: keyword, X: value}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	keyword := p.previous()
	var (
		value ast.Expr
		err   error
	)
	if !p.check(token.Semicolon) {
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.Return{Keyword: keyword, Value: value}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Keyword: keyword, Cond: cond, Body: body}, nil
}

// block parses the statements after an opening brace, through the closing one.
func (p *Parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.Expression{X: x}, nil
}

// ----------------------------------------
// Expressions, lowest precedence first.

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	x, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.match(token.Equal) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if v, ok := x.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}
		return nil, newError(equals, "Invalid assignment target.")
	}
	return x, nil
}

func (p *Parser) or() (ast.Expr, error) {
	return p.logical(p.and, token.Or)
}

func (p *Parser) and() (ast.Expr, error) {
	return p.logical(p.equality, token.And)
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.Slash, token.Star, token.Percent)
}

// binary parses a left-associative chain of operand (op operand)*.
func (p *Parser) binary(operand func() (ast.Expr, error), ops ...token.Kind) (ast.Expr, error) {
	x, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Left: x, Op: op, Right: right}
	}
	return x, nil
}

func (p *Parser) logical(operand func() (ast.Expr, error), op token.Kind) (ast.Expr, error) {
	x, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(op) {
		opTok := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		x = &ast.Logical{Left: x, Op: opTok, Right: right}
	}
	return x, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(token.LeftParen) {
		if x, err = p.finishCall(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= MaxArgs {
				return nil, newError(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.False):
		return &ast.Literal{Token: p.previous(), Value: false}, nil
	case p.match(token.True):
		return &ast.Literal{Token: p.previous(), Value: true}, nil
	case p.match(token.Nil):
		return &ast.Literal{Token: p.previous(), Value: nil}, nil
	case p.match(token.Number):
		tok := p.previous()
		n, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, newError(tok, "Invalid number literal.")
		}
		return &ast.Literal{Token: tok, Value: n}, nil
	case p.match(token.String):
		tok := p.previous()
		return &ast.Literal{Token: tok, Value: token.Unquote(tok.Lexeme)}, nil
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(token.LeftParen):
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: x}, nil
	}
	return nil, newError(p.peek(), "Expect expression.")
}

// ----------------------------------------
// Token stream helpers

// synchronize discards tokens until a likely statement boundary: just past
// a semicolon, or before a keyword that starts a declaration or statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, msg string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, newError(p.peek(), msg)
}

func (p *Parser) check(kind token.Kind) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool          { return p.peek().Kind == token.EOF }
func (p *Parser) peek() token.Token     { return p.tokens[p.current] }
func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }
