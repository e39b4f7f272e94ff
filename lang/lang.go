package lang

import (
	"io"
	"os"

	"github.com/ardnew/slang/log"
)

// DefaultMaxDepth is the default maximum nesting depth of parsed
// expressions. Users may modify this before parsing to change the default.
var DefaultMaxDepth = 1000

// DefaultMaxCallDepth is the default maximum depth of nested function calls.
var DefaultMaxCallDepth = 10000

// config holds parse and evaluation options.
type config struct {
	logger       log.Logger
	output       io.Writer
	maxDepth     int
	maxCallDepth int
}

// Option configures parsing or evaluation behavior.
type Option func(*config)

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithOutput sets the writer that print writes to.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// WithMaxDepth sets the maximum nesting depth of parsed expressions.
// A value <= 0 disables the limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxCallDepth sets the maximum depth of nested function calls.
// A value <= 0 disables the limit.
func WithMaxCallDepth(depth int) Option {
	return func(c *config) {
		c.maxCallDepth = depth
	}
}

func newConfig(opts ...Option) config {
	c := config{
		output:       os.Stdout,
		maxDepth:     DefaultMaxDepth,
		maxCallDepth: DefaultMaxCallDepth,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
