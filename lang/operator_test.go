package lang

import (
	"errors"
	"testing"
)

func TestValue_Binary(t *testing.T) {
	tests := []struct {
		name string
		lhs  Value
		op   Operator
		rhs  Value
		want string
	}{
		{name: "add", lhs: Number(1), op: OpAdd, rhs: Number(2), want: `3`},
		{name: "concat", lhs: String("a"), op: OpAdd, rhs: String("b"), want: `"ab"`},
		{name: "concat display", lhs: String("n="), op: OpAdd, rhs: Number(1.5), want: `"n=1.5"`},
		{name: "list concat", lhs: List(Number(1)), op: OpAdd, rhs: List(Bool(true)), want: `[1, true]`},
		{name: "repeat", lhs: String("ab"), op: OpMultiply, rhs: Number(3), want: `"ababab"`},
		{name: "modulo", lhs: Number(-7), op: OpModulo, rhs: Number(3), want: `-1`},
		{name: "less strings", lhs: String("b"), op: OpLess, rhs: String("a"), want: `false`},
		{name: "greater equal", lhs: Number(2), op: OpGreaterEqual, rhs: Number(2), want: `true`},
		{name: "equal kinds differ", lhs: Number(1), op: OpEqual, rhs: String("1"), want: `false`},
		{name: "not equal lists", lhs: List(Number(1)), op: OpNotEqual, rhs: List(Number(2)), want: `true`},
		{name: "unit equal", lhs: Unit(), op: OpEqual, rhs: Unit(), want: `true`},
		{name: "and", lhs: Bool(true), op: OpAnd, rhs: Bool(false), want: `false`},
		{name: "or", lhs: Bool(false), op: OpOr, rhs: Bool(true), want: `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.lhs.Binary(tt.op, tt.rhs)
			if err != nil {
				t.Fatalf("binary error: %v", err)
			}

			if got.Source() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Source())
			}
		})
	}
}

func TestValue_BinaryErrors(t *testing.T) {
	tests := []struct {
		name string
		lhs  Value
		op   Operator
		rhs  Value
		want error
	}{
		{name: "number plus string", lhs: Number(1), op: OpAdd, rhs: String("a"), want: ErrInvalidOperands},
		{name: "subtract strings", lhs: String("a"), op: OpSubtract, rhs: String("b"), want: ErrInvalidOperands},
		{name: "compare mixed", lhs: Number(1), op: OpLess, rhs: Bool(true), want: ErrInvalidOperands},
		{name: "fractional repeat", lhs: String("a"), op: OpMultiply, rhs: Number(1.5), want: ErrInvalidOperands},
		{name: "divide by zero", lhs: Number(1), op: OpDivide, rhs: Number(0), want: ErrDivisionByZero},
		{name: "modulo by zero", lhs: Number(1), op: OpModulo, rhs: Number(0), want: ErrDivisionByZero},
		{name: "not is prefix only", lhs: Bool(true), op: OpNot, rhs: Bool(true), want: ErrInvalidOperator},
		{name: "unknown operator", lhs: Number(1), op: Operator(0), rhs: Number(1), want: ErrInvalidOperator},
		{name: "out of range operator", lhs: Number(1), op: OpNot + 1, rhs: Number(1), want: ErrInvalidOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.lhs.Binary(tt.op, tt.rhs)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValue_Unary(t *testing.T) {
	if v, err := Number(2).Unary(UnaryNegate); err != nil || v.Number != -2 {
		t.Errorf("expected -2, got %s (%v)", v.Source(), err)
	}

	if v, err := Bool(false).Unary(UnaryNot); err != nil || !v.Bool {
		t.Errorf("expected true, got %s (%v)", v.Source(), err)
	}

	if _, err := String("a").Unary(UnaryNegate); !errors.Is(err, ErrInvalidOperands) {
		t.Errorf("expected invalid operands, got %v", err)
	}
}

func TestValue_EqualFunctions(t *testing.T) {
	f := Func([]string{"a"}, &Literal{Value: Unit()})

	if f.Equal(f) {
		t.Errorf("expected functions never to be equal")
	}
}

func TestOperator_Precedence(t *testing.T) {
	order := []Operator{OpOr, OpAnd, OpEqual, OpLess, OpAdd, OpMultiply, OpNot}

	for i := 1; i < len(order); i++ {
		if order[i-1].Precedence() >= order[i].Precedence() {
			t.Errorf("expected %s to bind looser than %s", order[i-1], order[i])
		}
	}

	if OpNot.IsBinary() {
		t.Errorf("expected not to be prefix only")
	}
}
