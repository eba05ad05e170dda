// Package minilox is a tree-walking interpreter for a small dynamically
// typed scripting language with closures.
//
// The pipeline is exposed stage by stage:
//
//	tokens, _ := minilox.Tokenize(src)
//	program, err := minilox.Parse(tokens)
//	table, err := minilox.Resolve(program)
//	output, err := minilox.Run(ctx, program, table, env)
//
// An Interpreter bundles the stages with a configuration and a native
// function registry.
package minilox

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/evaluator"
	"github.com/podhmo/minilox/object"
	"github.com/podhmo/minilox/parser"
	"github.com/podhmo/minilox/resolver"
	"github.com/podhmo/minilox/scanner"
	"github.com/podhmo/minilox/token"
)

// CompileError reports the errors that keep a program from running.
// Err is a scanner.ErrorList, parser.ErrorList or resolver.ErrorList.
type CompileError struct {
	Stage string // "scan", "parse" or "resolve"
	Err   error
}

func (e *CompileError) Error() string { return e.Err.Error() }
func (e *CompileError) Unwrap() error { return e.Err }

// Tokenize scans src. The tokens are always returned, EOF last; the error,
// if any, is a scanner.ErrorList of the lexical problems skipped over.
func Tokenize(src string) ([]token.Token, error) {
	var errs scanner.ErrorList
	tokens := scanner.Scan(src, errs.Add)
	return tokens, errs.Err()
}

// Parse builds the program. All syntax errors found are returned together
// as a parser.ErrorList; the program is then incomplete and must not run.
func Parse(tokens []token.Token) ([]ast.Stmt, error) {
	program, errs := parser.Parse(tokens)
	return program, errs.Err()
}

// Resolve computes the scope distance of every local variable reference.
func Resolve(program []ast.Stmt) (resolver.Table, error) {
	table, errs := resolver.Resolve(program)
	return table, errs.Err()
}

// Run executes a resolved program in env and returns what it printed.
// On a runtime failure the output printed before it is returned too.
func Run(ctx context.Context, program []ast.Stmt, table resolver.Table, env *object.Environment) (string, error) {
	var buf bytes.Buffer
	ev := evaluator.New(evaluator.Config{Locals: table, Stdout: &buf, MaxCallDepth: DefaultMaxCallDepth})
	err := ev.Run(ctx, program, env)
	return buf.String(), err
}

// NewGlobals returns a global environment holding the default natives.
func NewGlobals() *object.Environment {
	env := object.NewEnvironment()
	evaluator.Install(env, evaluator.DefaultNatives(nil)...)
	return env
}

// Result is the outcome of one Eval.
type Result struct {
	// Output is everything the program printed, one line per print.
	Output string
	// Diagnostics are the lexical problems the scanner skipped over.
	Diagnostics scanner.ErrorList
	// Globals is the global environment after the run.
	Globals *object.Environment
	// Steps is the number of statements executed.
	Steps int
}

// Get retrieves a global variable by name.
func (r *Result) Get(name string) (object.Object, bool) {
	return r.Globals.Get(name)
}

// Interpreter runs source text with a fixed configuration. It is not safe
// for concurrent use; create one Interpreter per goroutine.
type Interpreter struct {
	config Config
	logger *slog.Logger

	// REPL state, see EvalLine.
	replEnv      *object.Environment
	replResolver *resolver.Resolver
}

// NewInterpreter creates a new interpreter instance, configured with options.
func NewInterpreter(options ...Option) *Interpreter {
	cfg := DefaultConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return &Interpreter{config: cfg, logger: logger}
}

// Config returns the interpreter's configuration.
func (i *Interpreter) Config() Config { return i.config }

// Register adds a native function to every global environment created
// from now on.
func (i *Interpreter) Register(b *object.Builtin) {
	i.config.Natives = append(i.config.Natives, b)
}

// NewGlobals returns a fresh global environment with the default natives
// and every registered native installed.
func (i *Interpreter) NewGlobals() *object.Environment {
	env := object.NewEnvironment()
	evaluator.Install(env, evaluator.DefaultNatives(i.config.Now)...)
	evaluator.Install(env, i.config.Natives...)
	return env
}

// Eval scans, parses, resolves and runs src against fresh globals.
//
// Parse and resolve errors are returned as a *CompileError and nothing
// runs. A runtime failure is returned together with a Result holding the
// output printed before it.
func (i *Interpreter) Eval(ctx context.Context, src string) (*Result, error) {
	program, diags, err := i.compile(ctx, src)
	if err != nil {
		return nil, err
	}
	table, rerrs := resolver.Resolve(program)
	if len(rerrs) > 0 {
		i.logger.DebugContext(ctx, "resolve failed", "errors", len(rerrs))
		return nil, &CompileError{Stage: "resolve", Err: rerrs}
	}
	result := &Result{Diagnostics: diags, Globals: i.NewGlobals()}
	return i.run(ctx, program, table, result)
}

// EvalLine evaluates one chunk of input against globals that persist
// across calls, as a REPL needs.
func (i *Interpreter) EvalLine(ctx context.Context, line string) (*Result, error) {
	if i.replEnv == nil {
		i.replEnv = i.NewGlobals()
		i.replResolver = resolver.New()
	}
	program, diags, err := i.compile(ctx, line)
	if err != nil {
		return nil, err
	}
	before := len(i.replResolver.Errors())
	i.replResolver.Resolve(program)
	if rerrs := i.replResolver.Errors()[before:]; len(rerrs) > 0 {
		return nil, &CompileError{Stage: "resolve", Err: rerrs}
	}
	result := &Result{Diagnostics: diags, Globals: i.replEnv}
	return i.run(ctx, program, i.replResolver.Table(), result)
}

func (i *Interpreter) compile(ctx context.Context, src string) ([]ast.Stmt, scanner.ErrorList, error) {
	var diags scanner.ErrorList
	tokens := scanner.Scan(src, diags.Add)
	for _, d := range diags {
		i.logger.WarnContext(ctx, "scan", "line", d.Line, "msg", d.Msg)
	}
	program, perrs := parser.Parse(tokens)
	if len(perrs) > 0 {
		i.logger.DebugContext(ctx, "parse failed", "errors", len(perrs))
		return nil, diags, &CompileError{Stage: "parse", Err: perrs}
	}
	return program, diags, nil
}

func (i *Interpreter) run(ctx context.Context, program []ast.Stmt, table resolver.Table, result *Result) (*Result, error) {
	var buf bytes.Buffer
	var out io.Writer = &buf
	if i.config.Stdout != nil {
		out = io.MultiWriter(&buf, i.config.Stdout)
	}
	ev := evaluator.New(evaluator.Config{
		Locals:       table,
		Stdout:       out,
		Logger:       i.logger,
		MaxCallDepth: i.config.MaxCallDepth,
		MaxSteps:     i.config.MaxSteps,
	})
	err := ev.Run(ctx, program, result.Globals)
	result.Output = buf.String()
	result.Steps = ev.Steps()
	return result, err
}
