package lang

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func run(t *testing.T, src string, opts ...Option) (Value, string, error) {
	t.Helper()

	var buf bytes.Buffer

	in := New(append(opts, WithOutput(&buf))...)
	v, err := in.Run(t.Context(), src)

	return v, buf.String(), err
}

func TestRun_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "precedence", input: `1 + 2 * 3`, want: `7`},
		{name: "left associative", input: `10 - 3 - 2`, want: `5`},
		{name: "division", input: `7 / 2`, want: `3.5`},
		{name: "modulo", input: `7 % 3`, want: `1`},
		{name: "negation", input: `-2 * 3`, want: `-6`},
		{name: "string concat", input: `"ab" + "cd"`, want: `"abcd"`},
		{name: "string compare", input: `"a" < "b"`, want: `true`},
		{name: "list concat", input: `[1] + [2, 3]`, want: `[1, 2, 3]`},
		{name: "object equality", input: `{ a: 1 } == { a: 1 }`, want: `true`},
		{name: "not", input: `not (1 > 2)`, want: `true`},
		{name: "and short circuit", input: `false and nope()`, want: `false`},
		{name: "or short circuit", input: `true or nope()`, want: `true`},
		{name: "unit", input: `()`, want: `()`},
		{name: "trailing separator", input: `1;`, want: `()`},
		{name: "index rebinds target", input: `let a = [1, 2, 3]; a[{ a = [7, 8]; 1 }] = 5; a`, want: `[7, 5]`},
		{
			name:  "block scoping",
			input: `let x = 1; { let y = 2; x = x + y; }; x`,
			want:  `3`,
		},
		{
			name:  "shadowing in block",
			input: `let x = 1; { let x = 2; x = 5; }; x`,
			want:  `1`,
		},
		{
			name:  "block value",
			input: `let x = { let y = 4; y * 2 }; x`,
			want:  `8`,
		},
		{
			name:  "implicit return",
			input: `let f = || { 1 }; f()`,
			want:  `1`,
		},
		{
			name:  "terminated body yields unit",
			input: `let f = || { 1; }; f()`,
			want:  `()`,
		},
		{
			name:  "parameter isolation",
			input: `let a = 5; let inc = |a| { a = a + 1; a }; let r = inc(a); [r, a]`,
			want:  `[6, 5]`,
		},
		{
			name:  "caller isolation",
			input: `let x = 1; let f = || { x = 10; x }; let r = f(); [r, x]`,
			want:  `[10, 1]`,
		},
		{
			name:  "self rebinding is reconciled",
			input: `let f = || { f = 1; }; f(); f`,
			want:  `1`,
		},
		{
			name:  "recursion",
			input: `let fib = |n| if n < 2 { n } else { fib(n - 1) + fib(n - 2) }; fib(10)`,
			want:  `55`,
		},
		{
			name:  "else if chain",
			input: `let f = |n| if n < 0 { "neg" } else if n == 0 { "zero" } else { "pos" }; [f(-1), f(0), f(1)]`,
			want:  `["neg", "zero", "pos"]`,
		},
		{
			name:  "if without else",
			input: `if false { 1 }`,
			want:  `()`,
		},
		{
			name:  "index read",
			input: `let xs = [1, 2, 3]; xs[1]`,
			want:  `2`,
		},
		{
			name:  "index write",
			input: `let xs = [1, 2]; xs[0] = 9; xs`,
			want:  `[9, 2]`,
		},
		{
			name:  "nested field write",
			input: `let o = { a: { b: 1 } }; o.a.b = 5; o.a.b`,
			want:  `5`,
		},
		{
			name:  "compound assignment",
			input: `let x = 2; x *= 5; x -= 1; x`,
			want:  `9`,
		},
		{
			name:  "read is a copy",
			input: `let a = [1]; let b = a; b[0] = 2; a`,
			want:  `[1]`,
		},
		{
			name:  "for loop",
			input: `let s = 0; for i in [1, 2, 3] { s = s + i; }; s`,
			want:  `6`,
		},
		{
			name:  "while break value",
			input: `let i = 0; while true { i = i + 1; if i == 3 { break i * 10; }; }`,
			want:  `30`,
		},
		{
			name:  "continue",
			input: `let s = 0; for i in [1, 2, 3, 4] { if i % 2 == 0 { continue; }; s = s + i; }; s`,
			want:  `4`,
		},
		{
			name:  "return from loop",
			input: `let find = |xs| { for x in xs { if x > 2 { return x; }; }; -1 }; find([1, 5, 3])`,
			want:  `5`,
		},
		{
			name:  "top-level return",
			input: `return 4; 5`,
			want:  `4`,
		},
		{
			name:  "closure value",
			input: `let f = |a| a; f`,
			want:  `<function |a|>`,
		},
		{
			name:  "immediate call",
			input: `(|x| x * 2)(3)`,
			want:  `6`,
		},
		{
			name:  "loop variable scoped",
			input: `let x = 0; for x in [1, 2] { x = x * 10; }; x`,
			want:  `0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, _, err := run(t, tt.input)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}

			if got := v.Source(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "undefined", input: `y`, want: ErrUndefinedVariable},
		{name: "block local", input: `{ let y = 2; }; y`, want: ErrUndefinedVariable},
		{name: "redefinition", input: `let x = 1; let x = 2;`, want: ErrAlreadyDefined},
		{name: "assign undefined", input: `z = 1`, want: ErrUndefinedVariable},
		{name: "out of bounds", input: `let xs = [1, 2, 3]; xs[5]`, want: ErrIndexOutOfBounds},
		{name: "index shrinks target", input: `let a = [1, 2, 3]; a[{ a = [1]; 2 }] = 5; a`, want: ErrIndexOutOfBounds},
		{name: "fractional index", input: `let xs = [1]; xs[0.5]`, want: ErrInvalidIndex},
		{name: "negative index", input: `let xs = [1]; xs[-1]`, want: ErrInvalidIndex},
		{name: "index non-list", input: `let n = 1; n[0]`, want: ErrNotList},
		{name: "missing field", input: `let o = { a: 1 }; o.b`, want: ErrMissingField},
		{name: "assign missing field", input: `let o = { a: 1 }; o.c = 1`, want: ErrMissingField},
		{name: "field of non-object", input: `let n = 1; n.a`, want: ErrNotObject},
		{name: "condition type", input: `if 1 { 2 }`, want: ErrConditionType},
		{name: "while condition type", input: `while 1 { }`, want: ErrConditionType},
		{name: "for subject", input: `for x in 5 {}`, want: ErrForSubject},
		{name: "operand types", input: `1 + true`, want: ErrInvalidOperands},
		{name: "logical operand", input: `1 and true`, want: ErrInvalidOperands},
		{name: "division by zero", input: `1 / 0`, want: ErrDivisionByZero},
		{name: "undefined function", input: `nope(1)`, want: ErrUndefinedFunction},
		{name: "not a function", input: `let x = 1; x(2)`, want: ErrNotFunction},
		{name: "arity", input: `let f = |a| a; f(1, 2)`, want: ErrArityMismatch},
		{name: "break at top level", input: `break 1`, want: ErrStrayControl},
		{name: "break in function", input: `let f = || { break; }; f()`, want: ErrStrayControl},
		{name: "continue in function", input: `let f = || { continue; }; f()`, want: ErrStrayControl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := run(t, tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if !errors.Is(err, ErrRuntime) {
				t.Errorf("expected a runtime error, got %v", err)
			}

			if errors.Is(err, ErrSyntax) {
				t.Errorf("runtime error must not match ErrSyntax: %v", err)
			}
		})
	}
}

func TestRun_Print(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "display forms",
			input: `print("a", 1, true, [1, "b"], ())`,
			want:  "a 1 true [1, \"b\"] ()\n",
		},
		{
			name:  "no arguments",
			input: `print()`,
			want:  "\n",
		},
		{
			name:  "object keys sorted",
			input: `print({ b: 2, a: 1 })`,
			want:  "{ a: 1, b: 2 }\n",
		},
		{
			name:  "in loop",
			input: `for i in [1, 2] { print(i); }`,
			want:  "1\n2\n",
		},
		{
			name:  "shadowed by user binding",
			input: `let print = |x| x * 2; print(4)`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, out, err := run(t, tt.input)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}

			if out != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, out)
			}
		})
	}
}

func TestRun_PrintReturnsUnit(t *testing.T) {
	v, _, err := run(t, `print(1)`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if v.Kind != KindUnit {
		t.Errorf("expected Unit, got %s", v.Kind)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	in := New(WithOutput(&bytes.Buffer{}))

	_, err := in.Run(ctx, `while true {}`)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected error to wrap context.Canceled, got %v", err)
	}
}

func TestRun_MaxCallDepth(t *testing.T) {
	_, _, err := run(t, `let f = |n| f(n + 1); f(0)`, WithMaxCallDepth(50))
	if !errors.Is(err, ErrCallDepthExceeded) {
		t.Fatalf("expected call depth error, got %v", err)
	}
}

func TestInterpreter_Persistence(t *testing.T) {
	in := New(WithOutput(&bytes.Buffer{}))

	if _, err := in.Run(t.Context(), `let x = 1;`); err != nil {
		t.Fatalf("run error: %v", err)
	}

	if err := in.Define("n", Number(3)); err != nil {
		t.Fatalf("define error: %v", err)
	}

	v, err := in.Run(t.Context(), `x + n * 2`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if v.Number != 7 {
		t.Errorf("expected 7, got %s", v.Source())
	}

	names := in.Names()
	if len(names) != 2 || names[0] != "n" || names[1] != "x" {
		t.Errorf("expected [n x], got %v", names)
	}

	if err := in.Define("x", Number(0)); !errors.Is(err, ErrAlreadyDefined) {
		t.Errorf("expected already defined, got %v", err)
	}

	in.Reset()

	if _, err := in.Get("x"); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("expected reset to discard bindings, got %v", err)
	}
}

func TestRun_ErrorPosition(t *testing.T) {
	_, _, err := run(t, "let x = 1;\nlet y = x + z;")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}

	pos, ok := e.Position()
	if !ok || pos.Line != 2 {
		t.Errorf("expected error on line 2, got %v", err)
	}
}
