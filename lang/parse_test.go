package lang

import (
	"context"
	"errors"
	"testing"
)

func mustParse(t *testing.T, s string) *Program {
	t.Helper()

	prog, err := ParseString(t.Context(), s)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return prog
}

func mustParseExpr(t *testing.T, s string) Expression {
	t.Helper()

	expr, err := ParseExpression(t.Context(), s)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return expr
}

func TestParseExpression_Precedence(t *testing.T) {
	expr := mustParseExpr(t, `1 + 2 * 3`)

	add, ok := expr.(*BinaryExpr)
	if !ok || add.Op != OpAdd {
		t.Fatalf("expected top-level +, got %s", FormatExpression(expr))
	}

	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != OpMultiply {
		t.Fatalf("expected * on the right, got %s", FormatExpression(add.Right))
	}
}

func TestParseExpression_LeftAssociative(t *testing.T) {
	expr := mustParseExpr(t, `10 - 3 - 2`)

	outer, ok := expr.(*BinaryExpr)
	if !ok || outer.Op != OpSubtract {
		t.Fatalf("expected top-level -, got %s", FormatExpression(expr))
	}

	if _, ok := outer.Left.(*BinaryExpr); !ok {
		t.Errorf("expected nested subtraction on the left, got %s", FormatExpression(expr))
	}
}

func TestParseExpression_Canonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `1 + 2 * 3`, want: `(1 + (2 * 3))`},
		{input: `(1 + 2) * 3`, want: `((1 + 2) * 3)`},
		{input: `10 - 3 - 2`, want: `((10 - 3) - 2)`},
		{input: `a or b and c`, want: `(a or (b and c))`},
		{input: `a == b < c`, want: `(a == (b < c))`},
		{input: `-x * 2`, want: `(-x * 2)`},
		{input: `a - -b`, want: `(a - -b)`},
		{input: `not a and b`, want: `(not a and b)`},
		{input: `!done`, want: `not done`},
		{input: `- -x`, want: `-(-x)`},
		{input: `f(1, 2)[0].name`, want: `f(1, 2)[0].name`},
		{input: `[1, "a", true, ()]`, want: `[1, "a", true, ()]`},
		{input: `{ b: 1, a: 2 }`, want: `{ a: 2, b: 1 }`},
		{input: `{}`, want: `{}`},
		{input: `|a, b| a + b`, want: `|a, b| (a + b)`},
		{input: `1 + if c { 1 } else { 2 }`, want: `(1 + (if c { 1 } else { 2 }))`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := FormatExpression(mustParseExpr(t, tt.input))
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseString_Statements(t *testing.T) {
	prog := mustParse(t, `let x = 1; x = 2; x += 1; return; break 3; continue; x`)

	want := []string{
		"VariableDefinition",
		"VariableAssignment",
		"VariableAssignment",
		"Return",
		"Break",
		"Continue",
		"ImplicitReturn",
	}

	if len(prog.Statements) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(prog.Statements))
	}

	for i, stmt := range prog.Statements {
		if got := statementName(stmt); got != want[i] {
			t.Errorf("statement %d: expected %s, got %s", i, want[i], got)
		}
	}

	compound := prog.Statements[2].(*VariableAssignment)

	bin, ok := compound.Value.(*BinaryExpr)
	if !ok || bin.Op != OpAdd {
		t.Fatalf("expected compound assignment to expand to +")
	}

	if _, ok := bin.Left.(*RefExpr); !ok {
		t.Errorf("expected compound assignment to read its target")
	}

	ret := prog.Statements[3].(*Return)
	if lit, ok := ret.Value.(*Literal); !ok || lit.Value.Kind != KindUnit {
		t.Errorf("expected bare return to yield Unit")
	}
}

func TestParseString_ImplicitReturn(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `1`, want: "ImplicitReturn"},
		{input: `1;`, want: "Expr"},
		{input: `let x = 1`, want: "VariableDefinition"},
		{input: `1;; 2`, want: "ImplicitReturn"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			prog := mustParse(t, tt.input)
			last := prog.Statements[len(prog.Statements)-1]

			if got := statementName(last); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseString_ControlFlow(t *testing.T) {
	prog := mustParse(t, `if a { 1 } else if b { 2 } else { 3 }`)

	top := prog.Statements[0].(*ImplicitReturn).Value.(*IfElse)

	chained, ok := top.Else.(*IfElse)
	if !ok {
		t.Fatalf("expected else-if chain, got %T", top.Else)
	}

	if _, ok := chained.Else.(*BlockExpr); !ok {
		t.Errorf("expected final else block, got %T", chained.Else)
	}

	prog = mustParse(t, `for x in xs {}; while false {}`)

	loop := prog.Statements[0].(*ExprStatement).Expr.(*ForLoop)
	if loop.Name != "x" || len(loop.Body.Statements) != 0 {
		t.Errorf("expected empty for body bound to x, got %+v", loop)
	}

	if _, ok := prog.Statements[1].(*ImplicitReturn).Value.(*WhileLoop); !ok {
		t.Errorf("expected while loop")
	}
}

func TestParseString_Objects(t *testing.T) {
	expr := mustParseExpr(t, `{ a: 1, b: [1, 2] }`)

	obj, ok := expr.(*ObjectExpr)
	if !ok {
		t.Fatalf("expected object literal, got %T", expr)
	}

	if len(obj.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(obj.Fields))
	}

	if _, ok := mustParseExpr(t, `{ a }`).(*BlockExpr); !ok {
		t.Errorf("expected braces without colon to be a block")
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty program", input: ``, want: ErrEmptyBlock},
		{name: "let without name", input: `let = 1`, want: ErrInvalidDefinition},
		{name: "let without value", input: `let x =`, want: ErrInvalidDefinition},
		{name: "assign to literal", input: `1 = 2`, want: ErrInvalidAssignment},
		{name: "assign to call", input: `f() = 2`, want: ErrInvalidAssignment},
		{name: "continue with value", input: `continue 1`, want: ErrInvalidContinue},
		{name: "adjacent values", input: `1 2`, want: ErrMissingSeparator},
		{name: "closure not first", input: `x |a| a`, want: ErrInvalidClosure},
		{name: "while body not block", input: `while x 1`, want: ErrInvalidBody},
		{name: "short for", input: `for x in`, want: ErrInvalidFor},
		{name: "for without in", input: `for x of xs {}`, want: ErrInvalidFor},
		{name: "if without body", input: `if x`, want: ErrInvalidIf},
		{name: "else without body", input: `if x { 1 } else`, want: ErrInvalidIf},
		{name: "duplicate field", input: `{ a: 1, a: 2 }`, want: ErrDuplicateField},
		{name: "field without colon", input: `{ a 1, b: 2 }`, want: ErrInvalidField},
		{name: "binary operator prefix", input: `* 2`, want: ErrInvalidUnary},
		{name: "dangling operator", input: `1 +`, want: ErrEmptyExpression},
		{name: "empty list item", input: `[1, , 2]`, want: ErrEmptyExpression},
		{name: "keyword alone", input: `else`, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected a syntax error, got %v", err)
			}
		})
	}
}

func TestParseString_MaxDepth(t *testing.T) {
	_, err := ParseString(t.Context(), `((((1))))`, WithMaxDepth(2))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected max depth error, got %v", err)
	}

	if _, err := ParseString(t.Context(), `((((1))))`); err != nil {
		t.Errorf("unexpected error with default depth: %v", err)
	}
}
