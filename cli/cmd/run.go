package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/slang/lang"
	"github.com/ardnew/slang/log"
)

// Run parses and executes slang programs.
type Run struct {
	Set          []string `help:"Bind a global before running, evaluating the expression with expr-lang." placeholder:"NAME=EXPR" sep:"none" short:"D"`
	MaxDepth     int      `default:"${maxDepth}"     help:"Maximum expression nesting depth (0 for no limit)."`
	MaxCallDepth int      `default:"${maxCallDepth}" help:"Maximum function call depth (0 for no limit)."`

	Files []string `arg:"" default:"-" help:"Program files, or '-' for stdin. All files share one global scope." name:"file" optional:""`

	stdin  *os.File  `kong:"-"`
	stdout io.Writer `kong:"-"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	bindings, err := evalBindings(ctx, r.Set)
	if err != nil {
		return err
	}

	srcs, err := openSources(r.Files, r.input())
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	if len(srcs) == 0 {
		return ErrNoSource
	}

	in := lang.New(
		lang.WithLogger(log.Default()),
		lang.WithOutput(r.output()),
		lang.WithMaxDepth(r.MaxDepth),
		lang.WithMaxCallDepth(r.MaxCallDepth),
	)

	if err := define(in, bindings); err != nil {
		return err
	}

	for _, src := range srcs {
		log.DebugContext(ctx, "run", slog.String("source", src.Name))

		if _, err := in.RunReader(ctx, src); err != nil {
			return lang.WrapError(err).With(slog.String("source", src.Name))
		}
	}

	return nil
}

func (r *Run) input() *os.File {
	if r.stdin != nil {
		return r.stdin
	}

	return os.Stdin
}

func (r *Run) output() io.Writer {
	if r.stdout != nil {
		return r.stdout
	}

	return os.Stdout
}
