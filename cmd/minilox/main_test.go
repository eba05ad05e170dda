package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestTokenize(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.lox", `var x = "hi";`)

	code, stdout, _ := runCLI(t, "", "tokenize", path)
	assert.Equal(t, exitOK, code)
	want := strings.Join([]string{
		"VAR var null",
		"IDENTIFIER x null",
		"EQUAL = null",
		`STRING "hi" hi`,
		"SEMICOLON ; null",
		"EOF  null",
	}, "\n") + "\n"
	assert.Equal(t, want, stdout)
}

func TestTokenize_LexicalError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.lox", "1 @")
	code, stdout, stderr := runCLI(t, "", "tokenize", path)
	assert.Equal(t, exitDataErr, code)
	assert.Contains(t, stdout, "NUMBER 1 1.0")
	assert.Contains(t, stderr, "[line 1] Error: Unexpected character: @")
}

func TestParse(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.lox", "print 1 + 2;")

	t.Run("tree", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "", "parse", path)
		assert.Equal(t, exitOK, code)
		assert.Contains(t, stdout, "Binary (+)")
	})
	t.Run("json", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "", "parse", "-json", path)
		assert.Equal(t, exitOK, code)
		assert.True(t, strings.HasPrefix(stdout, "[\n  {\n    \"type\": \"Print\""), stdout)
	})
	t.Run("errors", func(t *testing.T) {
		bad := writeFile(t, t.TempDir(), "bad.lox", "print ;\nvar = 1;")
		code, _, stderr := runCLI(t, "", "parse", bad)
		assert.Equal(t, exitDataErr, code)
		assert.Contains(t, stderr, "[line 1] Error at ';': Expect expression.")
		assert.Contains(t, stderr, "[line 2] Error at '=': Expect variable name.")
	})
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.lox", "for (var i = 0; i < 2; i = i + 1) print i;")
	boom := writeFile(t, dir, "boom.lox", "print \"before\";\nprint 1 / 0;")
	bad := writeFile(t, dir, "bad.lox", "print (;")

	t.Run("success", func(t *testing.T) {
		code, stdout, stderr := runCLI(t, "", "run", ok)
		assert.Equal(t, exitOK, code, stderr)
		assert.Equal(t, "0\n1\n", stdout)
	})
	t.Run("runtime error", func(t *testing.T) {
		code, stdout, stderr := runCLI(t, "", "run", boom)
		assert.Equal(t, exitSoftware, code)
		assert.Equal(t, "before\n", stdout)
		assert.Contains(t, stderr, "[line 2] DivisionByZero: Division by zero.")
	})
	t.Run("compile error", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "", "run", bad)
		assert.Equal(t, exitDataErr, code)
		assert.Empty(t, stdout)
	})
	t.Run("many files keep argument order", func(t *testing.T) {
		code, stdout, stderr := runCLI(t, "", "-j", "2", "run", ok, boom, ok)
		assert.Equal(t, exitSoftware, code)
		assert.Equal(t, "0\n1\nbefore\n0\n1\n", stdout)
		assert.Contains(t, stderr, boom+": ")
	})
	t.Run("missing file", func(t *testing.T) {
		code, _, _ := runCLI(t, "", "run", filepath.Join(dir, "nope.lox"))
		assert.Equal(t, exitIOErr, code)
	})
	t.Run("missing file among others", func(t *testing.T) {
		missing := filepath.Join(dir, "nope.lox")
		code, stdout, stderr := runCLI(t, "", "run", ok, missing, ok)
		assert.Equal(t, exitIOErr, code)
		assert.Equal(t, "0\n1\n0\n1\n", stdout)
		assert.Contains(t, stderr, missing+": ")
	})
	t.Run("step budget", func(t *testing.T) {
		loop := writeFile(t, dir, "loop.lox", "while (true) {}")
		code, _, stderr := runCLI(t, "", "-max-steps", "50", "run", loop)
		assert.Equal(t, exitSoftware, code)
		assert.Contains(t, stderr, "BudgetExceeded")
	})
}

func TestRepl(t *testing.T) {
	code, stdout, stderr := runCLI(t, "var a = 1;\nprint a + 1;\nprint ;\nprint a;\n", "repl")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "2\n1\n", stdout)
	assert.Contains(t, stderr, "Expect expression.")
}

func TestUsage(t *testing.T) {
	code, _, _ := runCLI(t, "")
	assert.Equal(t, exitUsage, code)
	code, _, stderr := runCLI(t, "", "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "unknown command: frobnicate")
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, dir, "minilox.yaml", "log_level: debug\njobs: 2\nmax_steps: 10\ntimeout: 1s\n")
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, &Config{LogLevel: "debug", Jobs: 2, MaxCallDepth: defaultConfig().MaxCallDepth, MaxSteps: 10, Timeout: time.Second}, cfg)
	})
	t.Run("unknown field", func(t *testing.T) {
		path := writeFile(t, dir, "typo.yaml", "max_stepz: 10\n")
		_, err := loadConfig(path)
		assert.Error(t, err)
	})
	t.Run("negative limit", func(t *testing.T) {
		path := writeFile(t, dir, "neg.yaml", "max_steps: -1\n")
		_, err := loadConfig(path)
		assert.ErrorContains(t, err, "must not be negative")
	})
	t.Run("negative limit flag", func(t *testing.T) {
		deep := writeFile(t, dir, "deep.lox", "fun f(n) { if (n == 0) return 0; return f(n - 1); }\nprint f(5000);")
		for _, args := range [][]string{
			{"-max-call-depth=-5"},
			{"-max-steps=-1"},
			{"-j=-3"},
			{"-timeout=-1s"},
		} {
			code, stdout, stderr := runCLI(t, "", append(args, "run", deep)...)
			assert.Equal(t, exitUsage, code, args)
			assert.Empty(t, stdout, args)
			assert.Contains(t, stderr, "must not be negative", args)
		}
	})
	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.yaml", "")
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})
	t.Run("flags override the file", func(t *testing.T) {
		path := writeFile(t, dir, "steps.yaml", "max_steps: 100000\n")
		loop := writeFile(t, dir, "loop.lox", "while (true) {}")
		code, _, stderr := runCLI(t, "", "-config", path, "-max-steps", "5", "run", loop)
		assert.Equal(t, exitSoftware, code)
		assert.Contains(t, stderr, "Statement budget of 5 exhausted.")
	})
	t.Run("bad log level", func(t *testing.T) {
		code, _, stderr := runCLI(t, "", "-log-level", "loud", "repl")
		assert.Equal(t, exitUsage, code)
		assert.Contains(t, stderr, "unknown log level")
	})
}
