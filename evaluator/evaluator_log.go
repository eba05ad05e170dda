package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/podhmo/minilox/object"
)

// logc logs a message with the current function context from the call stack.
func (e *Evaluator) logc(ctx context.Context, level slog.Level, msg string, args ...any) {
	// usually depth is 2, because logc is called from other functions
	e.logcWithCallerDepth(ctx, level, 2, msg, args...)
}

// for user, use logc instead of this function
func (e *Evaluator) logcWithCallerDepth(ctx context.Context, level slog.Level, depth int, msg string, args ...any) {
	if !e.logger.Enabled(ctx, level) {
		return
	}

	if _, file, line, ok := runtime.Caller(depth); ok {
		args = append([]any{slog.String("exec_pos", fmt.Sprintf("%s:%d", file, line))}, args...)
	}

	if len(e.callStack) > 0 {
		frame := e.callStack[len(e.callStack)-1]
		args = append([]any{
			slog.String("in_func", frame.Function),
			slog.Int("in_func_line", frame.Line),
		}, args...)
	}

	e.logger.Log(ctx, level, msg, args...)
}

// newError builds a runtime error carrying a snapshot of the call stack.
func (e *Evaluator) newError(ctx context.Context, kind object.ErrorKind, line int, format string, args ...any) *object.Error {
	frames := make([]object.CallFrame, len(e.callStack))
	copy(frames, e.callStack)
	err := &object.Error{
		Kind:      kind,
		Line:      line,
		Message:   fmt.Sprintf(format, args...),
		CallStack: frames,
	}
	e.logcWithCallerDepth(ctx, slog.LevelDebug, 2, err.Message, "kind", kind.String(), "line", line, "stack", err.Inspect())
	return err
}
