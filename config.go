package minilox

import (
	"io"
	"log/slog"
	"time"

	"github.com/podhmo/minilox/object"
)

// DefaultMaxCallDepth bounds recursion so that a runaway script fails
// with StackOverflow instead of exhausting the Go stack.
const DefaultMaxCallDepth = 2048

// Config holds the settings shared by every run of an Interpreter.
type Config struct {
	// Logger is the shared logger for all components.
	Logger *slog.Logger

	// Stdout, if set, receives program output as it is printed, in
	// addition to the output captured in Result.
	Stdout io.Writer

	// MaxCallDepth bounds active function calls. Zero means no limit.
	MaxCallDepth int

	// MaxSteps bounds the statements one run may execute. Zero means no limit.
	MaxSteps int

	// Now is the clock behind the clock() native.
	Now func() time.Time

	// Natives are installed after the default natives, so a native with a
	// default's name replaces it.
	Natives []*object.Builtin
}

// DefaultConfig returns the configuration used by NewInterpreter before
// options are applied.
func DefaultConfig() Config {
	return Config{
		MaxCallDepth: DefaultMaxCallDepth,
		Now:          time.Now,
	}
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(cfg *Config) {
		*cfg = c
	}
}

// WithStdout streams program output to w.
func WithStdout(w io.Writer) Option {
	return func(c *Config) {
		c.Stdout = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMaxCallDepth sets the call depth limit. Zero disables it.
func WithMaxCallDepth(n int) Option {
	return func(c *Config) {
		c.MaxCallDepth = n
	}
}

// WithMaxSteps sets the statement budget of each run. Zero disables it.
func WithMaxSteps(n int) Option {
	return func(c *Config) {
		c.MaxSteps = n
	}
}

// WithClock sets the clock behind clock().
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithNatives adds native functions to every fresh global environment.
func WithNatives(natives ...*object.Builtin) Option {
	return func(c *Config) {
		c.Natives = append(c.Natives, natives...)
	}
}
