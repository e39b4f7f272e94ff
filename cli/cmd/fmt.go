package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/slang/lang"
	"github.com/ardnew/slang/log"
)

// Fmt parses a program and writes it back out in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical slang source (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Print the syntax tree."`
}

// Input is the source argument shared by every fmt subcommand.
type Input struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`

	stdin  *os.File  `kong:"-"`
	stdout io.Writer `kong:"-"`
}

// parse reads and parses the source, tagging any failure with format.
func (in *Input) parse(ctx context.Context, format string) (*lang.Program, error) {
	stdin := in.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	srcs, err := openSources([]string{in.Source}, stdin)
	if err != nil {
		return nil, err
	}
	defer closeSources(srcs)

	prog, err := lang.ParseReader(ctx, srcs[0], lang.WithLogger(log.Default()))
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("format", format),
			slog.String("source", in.Source),
		)
	}

	return prog, nil
}

func (in *Input) output() io.Writer {
	if in.stdout != nil {
		return in.stdout
	}

	return os.Stdout
}

// Native formats input as canonical slang source.
type Native struct {
	Input

	Indent int `default:"2" help:"Indent width for block bodies (0 for a single line per statement)." short:"i"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	prog, err := f.parse(ctx, "native")
	if err != nil {
		return err
	}

	return prog.Format(ctx, f.output(), f.Indent)
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Input

	Indent int `default:"2" help:"Indent width for JSON output." short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	prog, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, j.output(), j.Indent)
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Input

	Indent int `default:"2" help:"Indent width for YAML output." short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	prog, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, y.output(), y.Indent)
}

// AST prints the syntax tree as an indented outline.
type AST struct {
	Input
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	prog, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	prog.Print(ctx, a.output())

	return nil
}
