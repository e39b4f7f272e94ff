package lang

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestParseString_Cached(t *testing.T) {
	const src = `let cached = 41 + 1; cached`

	first, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if first != second {
		t.Errorf("expected repeated parse to return the cached program")
	}

	limited, err := ParseString(t.Context(), src, WithMaxDepth(50))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if limited == first {
		t.Errorf("expected a different depth limit to parse separately")
	}
}

func TestClearCache(t *testing.T) {
	const src = `let cleared = 1; cleared`

	first := mustParse(t, src)

	ClearCache()

	if second := mustParse(t, src); second == first {
		t.Errorf("expected a fresh program after ClearCache")
	}
}

func TestParseReader(t *testing.T) {
	prog, err := ParseReader(t.Context(), strings.NewReader(`let r = 2; r * r`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(prog.Statements) != 2 {
		t.Errorf("expected 2 statements, got %d", len(prog.Statements))
	}

	_, err = ParseReader(t.Context(), iotest.ErrReader(errors.New("boom")))
	if !errors.Is(err, ErrInput) {
		t.Errorf("expected input error, got %v", err)
	}
}
