// Package evaluator executes a resolved minilox program.
//
// Statement execution returns a (signal, error) pair. A nil signal means
// the statement completed normally; object.BREAK, object.CONTINUE and
// *object.ReturnValue are control signals that every layer either absorbs
// (loops absorb break/continue, calls absorb return) or passes up
// unchanged. Failures travel in the error, usually as *object.Error.
package evaluator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/object"
	"github.com/podhmo/minilox/resolver"
	"github.com/podhmo/minilox/token"
)

// Config holds the configuration for an Evaluator.
type Config struct {
	Locals resolver.Table
	Stdout io.Writer
	Logger *slog.Logger

	// MaxCallDepth bounds the number of active closure calls. Zero means no limit.
	MaxCallDepth int
	// MaxSteps bounds the number of statements executed. Zero means no limit.
	MaxSteps int
}

// Evaluator is the main object that evaluates the AST.
type Evaluator struct {
	locals resolver.Table
	stdout io.Writer
	logger *slog.Logger

	maxCallDepth int
	maxSteps     int
	steps        int

	callStack []object.CallFrame
}

// New creates a new Evaluator.
func New(cfg Config) *Evaluator {
	e := &Evaluator{
		locals:       cfg.Locals,
		stdout:       cfg.Stdout,
		logger:       cfg.Logger,
		maxCallDepth: cfg.MaxCallDepth,
		maxSteps:     cfg.MaxSteps,
	}
	if e.locals == nil {
		e.locals = resolver.Table{}
	}
	if e.stdout == nil {
		e.stdout = io.Discard
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return e
}

// Steps returns the number of statements executed so far.
func (e *Evaluator) Steps() int { return e.steps }

// Run executes program in env and stops at the first failure.
//
// A break, continue or return that reaches the top level ends the program
// without an error.
func (e *Evaluator) Run(ctx context.Context, program []ast.Stmt, env *object.Environment) error {
	for _, s := range program {
		sig, err := e.Execute(ctx, s, env)
		if err != nil {
			return err
		}
		if object.IsSignal(sig) {
			e.logc(ctx, slog.LevelWarn, "control signal reached the top level, stopping", "signal", sig.Inspect(), "line", s.Line())
			return nil
		}
	}
	return nil
}

// Execute runs one statement.
func (e *Evaluator) Execute(ctx context.Context, stmt ast.Stmt, env *object.Environment) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("execution interrupted: %w", err)
	}
	e.steps++
	if e.maxSteps > 0 && e.steps > e.maxSteps {
		return nil, e.newError(ctx, object.BudgetExceeded, stmt.Line(), "Statement budget of %d exhausted.", e.maxSteps)
	}

	switch s := stmt.(type) {
	case *ast.Expression:
		_, err := e.Evaluate(ctx, s.X, env)
		return nil, err

	case *ast.Print:
		val, err := e.Evaluate(ctx, s.X, env)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintln(e.stdout, val.Inspect()); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return nil, nil

	case *ast.Var:
		var val object.Object = object.NIL
		if s.Init != nil {
			v, err := e.Evaluate(ctx, s.Init, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		env.Define(s.Name.Lexeme, val)
		return nil, nil

	case *ast.Block:
		return e.ExecuteBlock(ctx, s.Stmts, object.NewEnclosedEnvironment(env))

	case *ast.If:
		cond, err := e.condition(ctx, s.Cond, env, "If")
		if err != nil {
			return nil, err
		}
		if cond {
			return e.Execute(ctx, s.Then, env)
		}
		if s.Else != nil {
			return e.Execute(ctx, s.Else, env)
		}
		return nil, nil

	case *ast.While:
		return e.execWhile(ctx, s, env)

	case *ast.Break:
		return object.BREAK, nil

	case *ast.Continue:
		return object.CONTINUE, nil

	case *ast.Function:
		env.Define(s.Name.Lexeme, &object.Function{Decl: s, Env: env})
		return nil, nil

	case *ast.Return:
		var val object.Object = object.NIL
		if s.Value != nil {
			v, err := e.Evaluate(ctx, s.Value, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &object.ReturnValue{Value: val}, nil

	default:
		return nil, e.newError(ctx, object.SyntaxError, stmt.Line(), "Unknown statement %T.", stmt)
	}
}

// ExecuteBlock runs stmts in env, which the caller has already created.
// The first signal or failure stops the block and is passed up unchanged.
func (e *Evaluator) ExecuteBlock(ctx context.Context, stmts []ast.Stmt, env *object.Environment) (object.Object, error) {
	for _, s := range stmts {
		sig, err := e.Execute(ctx, s, env)
		if err != nil || sig != nil {
			return sig, err
		}
	}
	return nil, nil
}

func (e *Evaluator) execWhile(ctx context.Context, s *ast.While, env *object.Environment) (object.Object, error) {
	for {
		cond, err := e.condition(ctx, s.Cond, env, "While")
		if err != nil {
			return nil, err
		}
		if !cond {
			return nil, nil
		}

		sig, err := e.Execute(ctx, s.Body, env)
		if err != nil {
			return nil, err
		}
		switch sig {
		case nil:
		case object.BREAK:
			return nil, nil
		case object.CONTINUE:
			// the body block was cut short before its increment ran; run it
			// in a frame shaped like that block so resolved depths still match
			if s.Increment != nil {
				if _, err := e.Evaluate(ctx, s.Increment, object.NewEnclosedEnvironment(env)); err != nil {
					return nil, err
				}
			}
		default:
			return sig, nil
		}
	}
}

func (e *Evaluator) condition(ctx context.Context, x ast.Expr, env *object.Environment, what string) (bool, error) {
	val, err := e.Evaluate(ctx, x, env)
	if err != nil {
		return false, err
	}
	b, ok := val.(*object.Boolean)
	if !ok {
		return false, e.newError(ctx, object.TypeError, x.Line(), "%s condition must be a boolean", what)
	}
	return b.Value, nil
}

// Evaluate computes the value of an expression.
func (e *Evaluator) Evaluate(ctx context.Context, expr ast.Expr, env *object.Environment) (object.Object, error) {
	switch x := expr.(type) {
	case *ast.Literal:
		return e.literal(ctx, x)

	case *ast.Grouping:
		return e.Evaluate(ctx, x.Inner, env)

	case *ast.Unary:
		right, err := e.Evaluate(ctx, x.Right, env)
		if err != nil {
			return nil, err
		}
		return e.unary(ctx, x.Op, right)

	case *ast.Binary:
		left, err := e.Evaluate(ctx, x.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := e.Evaluate(ctx, x.Right, env)
		if err != nil {
			return nil, err
		}
		return e.binary(ctx, x.Op, left, right)

	case *ast.Logical:
		left, err := e.Evaluate(ctx, x.Left, env)
		if err != nil {
			return nil, err
		}
		if x.Op.Kind == token.Or {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return e.Evaluate(ctx, x.Right, env)

	case *ast.Variable:
		return e.lookUpVariable(ctx, x, env)

	case *ast.Assign:
		val, err := e.Evaluate(ctx, x.Value, env)
		if err != nil {
			return nil, err
		}
		if !env.Assign(x.Name.Lexeme, val) {
			return nil, e.undefined(ctx, x.Name)
		}
		return val, nil

	case *ast.Call:
		callee, err := e.Evaluate(ctx, x.Callee, env)
		if err != nil {
			return nil, err
		}
		args := make([]object.Object, 0, len(x.Args))
		for _, a := range x.Args {
			v, err := e.Evaluate(ctx, a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return e.Call(ctx, callee, args, x.Line())

	default:
		return nil, e.newError(ctx, object.SyntaxError, expr.Line(), "Unknown expression %T.", expr)
	}
}

func (e *Evaluator) literal(ctx context.Context, x *ast.Literal) (object.Object, error) {
	switch v := x.Value.(type) {
	case nil:
		return object.NIL, nil
	case bool:
		return object.NativeBool(v), nil
	case float64:
		return &object.Number{Value: v}, nil
	case string:
		return &object.String{Value: v}, nil
	default:
		return nil, e.newError(ctx, object.SyntaxError, x.Line(), "Unknown literal %T.", x.Value)
	}
}

func (e *Evaluator) lookUpVariable(ctx context.Context, x *ast.Variable, env *object.Environment) (object.Object, error) {
	name := x.Name.Lexeme
	if depth, ok := e.locals.Depth(x); ok {
		if val, ok := env.GetAt(depth, name); ok {
			return val, nil
		}
	} else if val, ok := env.Get(name); ok {
		return val, nil
	}
	return nil, e.undefined(ctx, x.Name)
}

func (e *Evaluator) undefined(ctx context.Context, name token.Token) error {
	err := e.newError(ctx, object.UndefinedVariable, name.Line, "Undefined variable '%s'.", name.Lexeme)
	err.Name = name.Lexeme
	return err
}

func (e *Evaluator) unary(ctx context.Context, op token.Token, right object.Object) (object.Object, error) {
	switch r := right.(type) {
	case *object.Number:
		switch op.Kind {
		case token.Minus:
			return &object.Number{Value: -r.Value}, nil
		case token.Bang:
			return object.NativeBool(r.Value == 0), nil
		}
	case *object.Boolean:
		switch op.Kind {
		case token.Bang:
			return object.NativeBool(!r.Value), nil
		case token.Minus:
			return nil, e.newError(ctx, object.TypeError, op.Line, "Operand must be a number.")
		}
	default:
		return nil, e.newError(ctx, object.TypeError, op.Line, "Cannot apply unary operator to %s.", object.Describe(right))
	}
	return nil, e.newError(ctx, object.SyntaxError, op.Line, "Unknown unary operator '%s'.", op.Lexeme)
}

func (e *Evaluator) binary(ctx context.Context, op token.Token, left, right object.Object) (object.Object, error) {
	switch l := left.(type) {
	case *object.Number:
		switch r := right.(type) {
		case *object.Number:
			return e.arithmetic(ctx, op, l.Value, r.Value)
		case *object.String:
			if op.Kind == token.Plus {
				return &object.String{Value: object.FormatNumber(l.Value) + r.Value}, nil
			}
			return nil, e.newError(ctx, object.TypeError, op.Line, "Unsupported operation for mixed types")
		}
	case *object.String:
		switch r := right.(type) {
		case *object.String:
			if op.Kind == token.Plus {
				return &object.String{Value: l.Value + r.Value}, nil
			}
			return nil, e.newError(ctx, object.TypeError, op.Line, "Unsupported operation for strings")
		case *object.Number:
			if op.Kind == token.Plus {
				return &object.String{Value: l.Value + object.FormatNumber(r.Value)}, nil
			}
			return nil, e.newError(ctx, object.TypeError, op.Line, "Unsupported operation for mixed types")
		}
	}
	return nil, e.newError(ctx, object.TypeError, op.Line, "Operands must be compatible for the operation")
}

func (e *Evaluator) arithmetic(ctx context.Context, op token.Token, l, r float64) (object.Object, error) {
	switch op.Kind {
	case token.Plus:
		return &object.Number{Value: l + r}, nil
	case token.Minus:
		return &object.Number{Value: l - r}, nil
	case token.Star:
		return &object.Number{Value: l * r}, nil
	case token.Slash:
		if r == 0 {
			return nil, e.newError(ctx, object.DivisionByZero, op.Line, "Division by zero.")
		}
		return &object.Number{Value: l / r}, nil
	case token.Percent:
		if r == 0 {
			return nil, e.newError(ctx, object.DivisionByZero, op.Line, "Division by zero.")
		}
		return &object.Number{Value: math.Mod(l, r)}, nil
	case token.EqualEqual:
		return object.NativeBool(l == r), nil
	case token.BangEqual:
		return object.NativeBool(l != r), nil
	case token.Greater:
		return object.NativeBool(l > r), nil
	case token.GreaterEqual:
		return object.NativeBool(l >= r), nil
	case token.Less:
		return object.NativeBool(l < r), nil
	case token.LessEqual:
		return object.NativeBool(l <= r), nil
	}
	return nil, e.newError(ctx, object.SyntaxError, op.Line, "Unknown binary operator '%s'.", op.Lexeme)
}

// Call invokes callee with already evaluated arguments. line is the line
// of the call expression and is recorded in the call stack.
func (e *Evaluator) Call(ctx context.Context, callee object.Object, args []object.Object, line int) (object.Object, error) {
	fn, ok := callee.(object.Callable)
	if !ok {
		return nil, e.newError(ctx, object.TypeError, line, "Can only call functions and classes")
	}
	if fn.Arity() != len(args) {
		err := e.newError(ctx, object.ArityError, line, "Expected %d arguments but got %d.", fn.Arity(), len(args))
		err.Expected, err.Actual = fn.Arity(), len(args)
		return nil, err
	}

	switch fn := fn.(type) {
	case *object.Builtin:
		return e.callBuiltin(ctx, fn, args, line)
	case *object.Function:
		return e.callFunction(ctx, fn, args, line)
	default:
		return nil, e.newError(ctx, object.TypeError, line, "Can only call functions and classes")
	}
}

func (e *Evaluator) callBuiltin(ctx context.Context, fn *object.Builtin, args []object.Object, line int) (object.Object, error) {
	val, err := fn.Fn(args...)
	if err != nil {
		return nil, e.newError(ctx, object.NativeFailure, line, "%s: %v", fn.Ident, err).WithCause(err)
	}
	if val == nil {
		return object.NIL, nil
	}
	return val, nil
}

func (e *Evaluator) callFunction(ctx context.Context, fn *object.Function, args []object.Object, line int) (object.Object, error) {
	if e.maxCallDepth > 0 && len(e.callStack) >= e.maxCallDepth {
		return nil, e.newError(ctx, object.StackOverflow, line, "Stack overflow: call depth exceeds %d.", e.maxCallDepth)
	}

	e.callStack = append(e.callStack, object.CallFrame{Line: line, Function: fn.Name()})
	defer func() { e.callStack = e.callStack[:len(e.callStack)-1] }()
	e.logc(ctx, slog.LevelDebug, "call", "args", len(args))

	// one frame per activation holds the parameters and the body's
	// top-level declarations
	env := object.NewEnclosedEnvironment(fn.Env)
	for i, name := range fn.Params() {
		env.Define(name, args[i])
	}

	sig, err := e.ExecuteBlock(ctx, fn.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	switch sig := sig.(type) {
	case nil:
		return object.NIL, nil
	case *object.ReturnValue:
		return sig.Value, nil
	default:
		e.logc(ctx, slog.LevelWarn, "control signal escaped a function body", "signal", sig.Inspect())
		return object.NIL, nil
	}
}

func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Nil:
		return false
	case *object.Boolean:
		return obj.Value
	default:
		return true
	}
}
