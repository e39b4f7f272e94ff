package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/ardnew/slang/lang"
)

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	_, err := lang.New().Run(t.Context(), `(1 + 2`)
	if err == nil {
		t.Fatal("expected a syntax error")
	}

	err = fmt.Errorf("cli: %w", lang.WrapError(err).With(slog.String("source", "main.sl")))

	var buf bytes.Buffer

	slog.New(slog.NewTextHandler(&buf, nil)).Error("run failed", errorAttr(err))

	out := buf.String()

	for _, want := range []string{
		`error.class="syntax error"`,
		`error.source=main.sl`,
		`error.expected=)`,
		`error.line=1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestErrorAttr_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	slog.New(slog.NewTextHandler(&buf, nil)).Error("run failed", errorAttr(errors.New("boom")))

	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected plain error, got %q", buf.String())
	}
}
