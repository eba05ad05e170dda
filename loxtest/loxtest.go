// Package loxtest provides helpers for testing minilox scripts.
//
// Scripts may carry their expected behavior in comments:
//
//	print 1 + 2; // expect: 3
//	print 1 / 0; // expect runtime error: Division by zero.
//
// Every "expect:" comment is one expected output line, in order. At most
// one "expect runtime error:" comment names the message of the failure the
// script must end with.
package loxtest

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/minilox"
	"github.com/podhmo/minilox/object"
)

const (
	expectPrefix      = "// expect: "
	expectErrorPrefix = "// expect runtime error: "
)

// Expectation is what a script declares about its own run.
type Expectation struct {
	Output       []string
	RuntimeError string
}

// ParseExpectations collects the expect comments of src.
func ParseExpectations(src string) Expectation {
	var exp Expectation
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, expectErrorPrefix); i >= 0 {
			exp.RuntimeError = strings.TrimSpace(line[i+len(expectErrorPrefix):])
			continue
		}
		if i := strings.Index(line, expectPrefix); i >= 0 {
			exp.Output = append(exp.Output, strings.TrimRight(line[i+len(expectPrefix):], " \r"))
		}
	}
	return exp
}

// Run evaluates src with a fresh interpreter and fails t on any error.
func Run(t testing.TB, src string, opts ...minilox.Option) *minilox.Result {
	t.Helper()
	result, err := minilox.NewInterpreter(opts...).Eval(context.Background(), src)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return result
}

// RunError evaluates src and fails t unless it ends with an error. It
// returns the output printed before the failure, and the failure.
func RunError(t testing.TB, src string, opts ...minilox.Option) (string, error) {
	t.Helper()
	result, err := minilox.NewInterpreter(opts...).Eval(context.Background(), src)
	if err == nil {
		t.Fatalf("expected an error, got output %q", result.Output)
	}
	if result == nil {
		return "", err
	}
	return result.Output, err
}

// Expect evaluates src and compares its output with want, line by line.
func Expect(t testing.TB, src string, want ...string) {
	t.Helper()
	result := Run(t, src)
	if diff := cmp.Diff(want, Lines(result.Output)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// RunScript evaluates the script at path and checks it against its
// expect comments.
func RunScript(t testing.TB, path string, opts ...minilox.Option) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	src := string(b)
	exp := ParseExpectations(src)

	result, err := minilox.NewInterpreter(opts...).Eval(context.Background(), src)
	var output string
	if result != nil {
		output = result.Output
	}
	if diff := cmp.Diff(exp.Output, Lines(output)); diff != "" {
		t.Errorf("%s: output mismatch (-want +got):\n%s", path, diff)
	}

	switch {
	case exp.RuntimeError == "" && err != nil:
		t.Errorf("%s: unexpected error: %v", path, err)
	case exp.RuntimeError != "":
		var rerr *object.Error
		if !errors.As(err, &rerr) {
			t.Errorf("%s: want runtime error %q, got %v", path, exp.RuntimeError, err)
			return
		}
		if rerr.Message != exp.RuntimeError {
			t.Errorf("%s: runtime error = %q, want %q", path, rerr.Message, exp.RuntimeError)
		}
	}
}

// Lines splits output into its lines. Empty output has no lines.
func Lines(output string) []string {
	output = strings.TrimSuffix(output, "\n")
	if output == "" {
		return nil
	}
	return strings.Split(output, "\n")
}
