// Command minilox tokenizes, parses or runs minilox scripts.
//
//	minilox [flags] tokenize FILE
//	minilox [flags] parse [-json] FILE
//	minilox [flags] run FILE...
//	minilox [flags] repl
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/podhmo/minilox"
	"github.com/podhmo/minilox/ast"
	"github.com/podhmo/minilox/object"
	"golang.org/x/sync/errgroup"
)

// exit codes, from sysexits.h
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65 // scan, parse or resolve errors
	exitSoftware = 70 // runtime errors
	exitIOErr    = 74
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configFile   string
	logLevel     string
	jobs         int
	maxCallDepth int
	maxSteps     int
	timeout      time.Duration
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("minilox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configFile, "config", "", "YAML config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&opts.jobs, "j", 4, "number of files run concurrently")
	fs.IntVar(&opts.maxCallDepth, "max-call-depth", -1, "call depth limit, 0 for none")
	fs.IntVar(&opts.maxSteps, "max-steps", -1, "statement budget per file, 0 for none")
	fs.DurationVar(&opts.timeout, "timeout", 0, "time limit per file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: minilox [flags] tokenize|parse|run|repl [args]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return exitUsage
	}
	cfg.override(fs, opts)
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return exitUsage
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return exitUsage
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "tokenize":
		return tokenize(rest, stdout, stderr)
	case "parse":
		return parse(rest, stdout, stderr)
	case "run":
		return runFiles(ctx, cfg, logger, rest, stdout, stderr)
	case "repl":
		return repl(ctx, cfg, logger, stdin, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", cmd)
		fs.Usage()
		return exitUsage
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}

func readSingle(name string, args []string, stderr io.Writer) (string, int) {
	if len(args) != 1 {
		fmt.Fprintf(stderr, "Usage: minilox %s FILE\n", name)
		return "", exitUsage
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return "", exitIOErr
	}
	return string(b), exitOK
}

func tokenize(args []string, stdout, stderr io.Writer) int {
	src, code := readSingle("tokenize", args, stderr)
	if code != exitOK {
		return code
	}
	tokens, scanErr := minilox.Tokenize(src)
	if scanErr != nil {
		fmt.Fprintln(stderr, scanErr)
	}
	w := bufio.NewWriter(stdout)
	for _, tok := range tokens {
		fmt.Fprintln(w, tok)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return exitIOErr
	}
	if scanErr != nil {
		return exitDataErr
	}
	return exitOK
}

func parse(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the syntax tree as JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	src, code := readSingle("parse", fs.Args(), stderr)
	if code != exitOK {
		return code
	}

	tokens, scanErr := minilox.Tokenize(src)
	if scanErr != nil {
		fmt.Fprintln(stderr, scanErr)
	}
	program, err := minilox.Parse(tokens)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitDataErr
	}
	if *asJSON {
		err = ast.FprintJSON(stdout, program)
	} else {
		err = ast.Fprint(stdout, program)
	}
	if err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return exitIOErr
	}
	if scanErr != nil {
		return exitDataErr
	}
	return exitOK
}

type fileResult struct {
	output string
	err    error
}

// runFiles runs every file with its own interpreter, up to cfg.Jobs at a
// time, then reports the results in argument order.
func runFiles(ctx context.Context, cfg *Config, logger *slog.Logger, files []string, stdout, stderr io.Writer) int {
	if len(files) == 0 {
		fmt.Fprintln(stderr, "Usage: minilox run FILE...")
		return exitUsage
	}

	results := make([]fileResult, len(files))
	var g errgroup.Group
	g.SetLimit(max(cfg.Jobs, 1))
	for i, name := range files {
		g.Go(func() error {
			b, err := os.ReadFile(name)
			if err != nil {
				results[i].err = err
				return nil
			}
			ctx := ctx
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}
			interp := minilox.NewInterpreter(cfg.options(logger.With("file", name))...)
			result, err := interp.Eval(ctx, string(b))
			if result != nil {
				results[i].output = result.Output
			}
			results[i].err = err
			return nil
		})
	}
	g.Wait() // failures are kept per file in results

	code := exitOK
	for i, r := range results {
		io.WriteString(stdout, r.output)
		if r.err == nil {
			continue
		}
		prefix := ""
		if len(files) > 1 {
			prefix = files[i] + ": "
		}
		fmt.Fprintf(stderr, "%s%v\n", prefix, r.err)
		if c := exitCode(r.err); code == exitOK {
			code = c
		}
	}
	return code
}

func exitCode(err error) int {
	var cerr *minilox.CompileError
	var rerr *object.Error
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cerr):
		return exitDataErr
	case errors.As(err, &rerr), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitSoftware
	default:
		return exitIOErr
	}
}

func repl(ctx context.Context, cfg *Config, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	interp := minilox.NewInterpreter(cfg.options(logger)...)
	sc := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stderr, "> ")
		if !sc.Scan() {
			break
		}
		result, err := interp.EvalLine(ctx, sc.Text())
		if result != nil {
			io.WriteString(stdout, result.Output)
		}
		if err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
	fmt.Fprintln(stderr)
	if err := sc.Err(); err != nil {
		fmt.Fprintf(stderr, "!! %+v\n", err)
		return exitIOErr
	}
	return exitOK
}
