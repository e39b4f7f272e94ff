package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/slang/cli/cmd/repl"
	"github.com/ardnew/slang/lang"
	"github.com/ardnew/slang/log"
	"github.com/ardnew/slang/pkg"
)

// Repl starts an interactive session.
type Repl struct {
	Set          []string `help:"Bind a global before the session starts, evaluating the expression with expr-lang." placeholder:"NAME=EXPR" sep:"none" short:"D"`
	Load         []string `help:"Run program files before the first prompt." placeholder:"FILE" short:"l" type:"existingfile"`
	NoHistory    bool     `help:"Do not read or write the history file."`
	MaxDepth     int      `default:"${maxDepth}"     help:"Maximum expression nesting depth (0 for no limit)."`
	MaxCallDepth int      `default:"${maxCallDepth}" help:"Maximum function call depth (0 for no limit)."`

	stdin  *os.File  `kong:"-"`
	stdout io.Writer `kong:"-"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	bindings, err := evalBindings(ctx, r.Set)
	if err != nil {
		return err
	}

	opts := []repl.Option{
		repl.WithLogger(log.Default()),
		repl.WithHistory(r.historyPath(ctx)),
		repl.WithInterpreterOptions(
			lang.WithMaxDepth(r.MaxDepth),
			lang.WithMaxCallDepth(r.MaxCallDepth),
		),
		repl.WithSetup(func(in *lang.Interpreter) error {
			return r.setup(ctx, in, bindings)
		}),
	}

	if r.stdin != nil || r.stdout != nil {
		opts = append(opts, repl.WithStdio(r.input(), r.output()))
	}

	return repl.Run(ctx, opts...)
}

// setup binds the command-line globals and runs each loaded file.
func (r *Repl) setup(ctx context.Context, in *lang.Interpreter, bindings []binding) error {
	if err := define(in, bindings); err != nil {
		return err
	}

	if len(r.Load) == 0 {
		return nil
	}

	srcs, err := openSources(r.Load, r.input())
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	for _, src := range srcs {
		log.DebugContext(ctx, "load", slog.String("source", src.Name))

		if _, err := in.RunReader(ctx, src); err != nil {
			return lang.WrapError(err).With(slog.String("source", src.Name))
		}
	}

	return nil
}

// historyPath returns the history file in the cache directory, or the empty
// string when history is disabled.
func (r *Repl) historyPath(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	dir := pkg.CacheDir()

	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[CacheIdentifier]; ok && v != "" {
			dir = v
		}
	}

	return filepath.Join(dir, repl.HistoryFile)
}

func (r *Repl) input() *os.File {
	if r.stdin != nil {
		return r.stdin
	}

	return os.Stdin
}

func (r *Repl) output() io.Writer {
	if r.stdout != nil {
		return r.stdout
	}

	return os.Stdout
}
