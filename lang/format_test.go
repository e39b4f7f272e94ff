package lang

import (
	"bytes"
	"strings"
	"testing"
)

func format(t *testing.T, src string, indent int) string {
	t.Helper()

	var buf bytes.Buffer

	if err := mustParse(t, src).Format(t.Context(), &buf, indent); err != nil {
		t.Fatalf("format error: %v", err)
	}

	return buf.String()
}

func TestFormat_RoundTrip(t *testing.T) {
	tests := []string{
		`let x = 1 + 2 * 3; x`,
		`let f = |a, b| { let c = a * b; c - -a }; f(2, 3)`,
		`let xs = [1, "two", true, ()]; xs[0] = xs[1 + 1]; xs`,
		`let o = { b: { c: 1 }, a: [] }; o.b.c += 1; o.a`,
		`let i = 0; while i < 3 { i = i + 1; if i == 2 { continue; }; }`,
		`for x in [1, 2] { print(x); }; ()`,
		`let g = |n| if n < 0 { "neg" } else if n == 0 { "zero" } else { "pos" }; g(1)`,
		`let h = || { return; }; let k = || { }; not true or false and !false`,
		`1 + if true { 1 } else { 2 }`,
		`(|x| x)(1); { 1; }; -(-2)`,
		`let m = { a: |x| x }; (m.a)(1)`,
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			first := format(t, src, 0)
			second := format(t, strings.TrimSpace(first), 0)

			if first != second {
				t.Errorf("format is not stable:\n%s\n%s", first, second)
			}

			indented := format(t, src, 2)
			if again := format(t, indented, 0); again != first {
				t.Errorf("indented form differs after reparse:\n%s\n%s", first, again)
			}
		})
	}
}

func TestFormat_Indent(t *testing.T) {
	src := `let f = |a| { a }`

	if got, want := format(t, src, 0), "let f = |a| { a };\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got, want := format(t, src, 2), "let f = |a| {\n  a\n};\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormat_JSONAndYAML(t *testing.T) {
	prog := mustParse(t, `let x = 1 + 2;`)

	var js bytes.Buffer
	if err := prog.FormatJSON(t.Context(), &js, 2); err != nil {
		t.Fatalf("json error: %v", err)
	}

	if !strings.Contains(js.String(), `"type": "Binary"`) {
		t.Errorf("expected binary node in JSON, got %s", js.String())
	}

	var ym bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &ym, 2); err != nil {
		t.Fatalf("yaml error: %v", err)
	}

	if !strings.Contains(ym.String(), "Binary") {
		t.Errorf("expected binary node in YAML, got %s", ym.String())
	}
}

func TestProgram_Print(t *testing.T) {
	var buf bytes.Buffer

	mustParse(t, `let x = 1;`).Print(t.Context(), &buf)

	if got, want := buf.String(), "Define: x\n  Number: 1\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
