package lang

import (
	"context"
	"io"
	"log/slog"
)

// Interpreter evaluates programs against a persistent top-level context.
// Bindings made by one Run remain visible to the next. An Interpreter is not
// safe for concurrent use.
type Interpreter struct {
	root *Context
	cfg  config
}

// New returns an interpreter with an empty top-level context.
func New(opts ...Option) *Interpreter {
	return &Interpreter{
		root: NewContext(),
		cfg:  newConfig(opts...),
	}
}

// Run parses and executes source. It returns the value of the program's
// trailing unterminated expression, or of a top-level return.
func (in *Interpreter) Run(ctx context.Context, source string) (Value, error) {
	prog, err := ParseString(ctx, source, in.options()...)
	if err != nil {
		return Unit(), err
	}

	return in.Exec(ctx, prog.Statements)
}

// RunReader reads all of r and executes it.
func (in *Interpreter) RunReader(ctx context.Context, r io.Reader) (Value, error) {
	prog, err := ParseReader(ctx, r, in.options()...)
	if err != nil {
		return Unit(), err
	}

	return in.Exec(ctx, prog.Statements)
}

// Exec executes already parsed statements.
func (in *Interpreter) Exec(ctx context.Context, stmts []Statement) (Value, error) {
	e := &evaluator{
		ctx:      ctx,
		out:      in.cfg.output,
		logger:   in.cfg.logger,
		maxCalls: in.cfg.maxCallDepth,
	}

	in.cfg.logger.TraceContext(ctx, "exec", slog.Int("statement_count", len(stmts)))

	return e.program(in.root, stmts)
}

// Define binds name in the top-level context.
func (in *Interpreter) Define(name string, v Value) error {
	return in.root.Define(name, v)
}

// Get returns a copy of the top-level binding of name.
func (in *Interpreter) Get(name string) (Value, error) {
	return in.root.Get(name)
}

// Names returns the names bound at top level, sorted.
func (in *Interpreter) Names() []string {
	return in.root.Names()
}

// Reset discards every top-level binding.
func (in *Interpreter) Reset() {
	in.root = NewContext()
}

func (in *Interpreter) options() []Option {
	return []Option{
		WithLogger(in.cfg.logger),
		WithMaxDepth(in.cfg.maxDepth),
	}
}
