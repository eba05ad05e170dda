package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/podhmo/minilox"
	"gopkg.in/yaml.v3"
)

// Config is the content of the file given by -config.
type Config struct {
	LogLevel     string        `yaml:"log_level"`
	Jobs         int           `yaml:"jobs"`
	MaxCallDepth int           `yaml:"max_call_depth"`
	MaxSteps     int           `yaml:"max_steps"`
	Timeout      time.Duration `yaml:"timeout"`
}

func defaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		Jobs:         4,
		MaxCallDepth: minilox.DefaultMaxCallDepth,
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	if err := decodeConfig(f, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.validate()
}

func (c *Config) validate() error {
	if c.Jobs < 0 || c.MaxCallDepth < 0 || c.MaxSteps < 0 || c.Timeout < 0 {
		return errors.New("limits must not be negative")
	}
	return nil
}

// override applies the flags that were set explicitly on the command line.
func (c *Config) override(fs *flag.FlagSet, opts options) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			c.LogLevel = opts.logLevel
		case "j":
			c.Jobs = opts.jobs
		case "max-call-depth":
			c.MaxCallDepth = opts.maxCallDepth
		case "max-steps":
			c.MaxSteps = opts.maxSteps
		case "timeout":
			c.Timeout = opts.timeout
		}
	})
}

func (c *Config) options(logger *slog.Logger) []minilox.Option {
	return []minilox.Option{
		minilox.WithLogger(logger),
		minilox.WithMaxCallDepth(c.MaxCallDepth),
		minilox.WithMaxSteps(c.MaxSteps),
	}
}
