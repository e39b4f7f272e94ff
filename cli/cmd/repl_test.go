package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/slang/cli/cmd/repl"
	"github.com/ardnew/slang/lang"
)

func TestRepl_NonInteractive(t *testing.T) {
	lib := writeFile(t, t.TempDir(), "lib.sl", `let greet = |name| { prefix + name };`)

	var out bytes.Buffer

	r := Repl{
		Set:       []string{`prefix="hello, "`},
		Load:      []string{lib},
		NoHistory: true,
		stdin:     fakeStdin(t, `print(greet("slang"))`),
		stdout:    &out,
	}

	if err := r.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := out.String(); got != "hello, slang\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRepl_LoadError(t *testing.T) {
	bad := writeFile(t, t.TempDir(), "bad.sl", "missing()")

	r := Repl{
		Load:      []string{bad},
		NoHistory: true,
		stdin:     fakeStdin(t, ""),
		stdout:    new(bytes.Buffer),
	}

	if err := r.Run(t.Context()); !errors.Is(err, lang.ErrRuntime) {
		t.Errorf("expected runtime error from the loaded file, got %v", err)
	}
}

func TestRepl_HistoryPath(t *testing.T) {
	if got := (&Repl{NoHistory: true}).historyPath(t.Context()); got != "" {
		t.Errorf("expected no history path, got %q", got)
	}

	dir := t.TempDir()

	var cli struct{}

	parser, err := kong.New(&cli, kong.Vars{CacheIdentifier: dir})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(t.Context(), ktx)

	if got, want := (&Repl{}).historyPath(ctx), filepath.Join(dir, repl.HistoryFile); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
