package lang

import (
	"log/slog"
	"math"
	"slices"
	"strings"
)

// Operator identifies a binary or prefix operator token.
type Operator int

const (
	OpOr Operator = iota + 1
	OpAnd
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpNot
)

var operatorSpelling = map[Operator]string{
	OpOr:           "or",
	OpAnd:          "and",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpModulo:       "%",
	OpNot:          "not",
}

// String returns the canonical spelling of the operator.
func (op Operator) String() string {
	if s, ok := operatorSpelling[op]; ok {
		return s
	}

	return "?"
}

// Precedence returns the binding strength of the operator. Lower values bind
// looser and are split first by the expression parser.
func (op Operator) Precedence() int {
	switch op {
	case OpOr:
		return 1

	case OpAnd:
		return 2

	case OpEqual, OpNotEqual:
		return 3

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return 4

	case OpAdd, OpSubtract:
		return 5

	case OpMultiply, OpDivide, OpModulo:
		return 6

	case OpNot:
		return 7

	default:
		return 0
	}
}

// IsBinary reports whether the operator may appear between two operands.
func (op Operator) IsBinary() bool {
	return op >= OpOr && op <= OpModulo
}

// UnaryOperator is the prefix form of an operator.
type UnaryOperator int

const (
	UnaryPlus UnaryOperator = iota + 1
	UnaryNegate
	UnaryNot
)

// String returns the canonical spelling of the prefix operator.
func (op UnaryOperator) String() string {
	switch op {
	case UnaryPlus:
		return "+"

	case UnaryNegate:
		return "-"

	case UnaryNot:
		return "not"

	default:
		return "?"
	}
}

// unaryOf maps an operator in prefix position to its unary form.
func unaryOf(op Operator) (UnaryOperator, bool) {
	switch op {
	case OpAdd:
		return UnaryPlus, true

	case OpSubtract:
		return UnaryNegate, true

	case OpNot:
		return UnaryNot, true

	default:
		return 0, false
	}
}

// Binary applies op to the receiver and rhs. The logical operators are
// evaluated here without short-circuit; the evaluator short-circuits before
// calling Binary.
func (v Value) Binary(op Operator, rhs Value) (Value, error) {
	if !op.IsBinary() {
		return Unit(), ErrInvalidOperator.With(slog.String("operator", op.String()))
	}

	switch op {
	case OpEqual:
		return Bool(v.Equal(rhs)), nil

	case OpNotEqual:
		return Bool(!v.Equal(rhs)), nil

	case OpAnd, OpOr:
		if v.Kind != KindBoolean || rhs.Kind != KindBoolean {
			return Unit(), operandError(op, v, rhs)
		}

		if op == OpAnd {
			return Bool(v.Bool && rhs.Bool), nil
		}

		return Bool(v.Bool || rhs.Bool), nil

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return v.compare(op, rhs)

	case OpAdd:
		return v.add(rhs)

	default: // OpSubtract, OpMultiply, OpDivide, OpModulo
		return v.arithmetic(op, rhs)
	}
}

// Unary applies a prefix operator to the receiver.
func (v Value) Unary(op UnaryOperator) (Value, error) {
	switch op {
	case UnaryPlus:
		if v.Kind == KindNumber {
			return v, nil
		}

	case UnaryNegate:
		if v.Kind == KindNumber {
			return Number(-v.Number), nil
		}

	case UnaryNot:
		if v.Kind == KindBoolean {
			return Bool(!v.Bool), nil
		}

	default:
		return Unit(), ErrInvalidOperator.With(slog.String("operator", op.String()))
	}

	return Unit(), ErrInvalidOperands.With(
		slog.String("operator", op.String()),
		slog.String("operand", v.Kind.String()),
	)
}

func (v Value) add(rhs Value) (Value, error) {
	switch {
	case v.Kind == KindNumber && rhs.Kind == KindNumber:
		return Number(v.Number + rhs.Number), nil

	case v.Kind == KindString && rhs.Kind == KindString:
		return String(v.Str + rhs.Str), nil

	case v.Kind == KindString:
		return String(v.Str + rhs.Display()), nil

	case v.Kind == KindList && rhs.Kind == KindList:
		items := make([]Value, 0, len(v.List)+len(rhs.List))
		for _, item := range v.List {
			items = append(items, item.Clone())
		}

		for _, item := range rhs.List {
			items = append(items, item.Clone())
		}

		return List(items...), nil

	default:
		return Unit(), operandError(OpAdd, v, rhs)
	}
}

func (v Value) arithmetic(op Operator, rhs Value) (Value, error) {
	if op == OpMultiply && v.Kind == KindString && rhs.Kind == KindNumber {
		n, ok := v.integral(rhs.Number)
		if !ok {
			return Unit(), operandError(op, v, rhs)
		}

		return String(strings.Repeat(v.Str, n)), nil
	}

	if v.Kind != KindNumber || rhs.Kind != KindNumber {
		return Unit(), operandError(op, v, rhs)
	}

	a, b := v.Number, rhs.Number

	switch op {
	case OpSubtract:
		return Number(a - b), nil

	case OpMultiply:
		return Number(a * b), nil

	case OpDivide:
		if b == 0 {
			return Unit(), ErrDivisionByZero.With(slog.String("operator", op.String()))
		}

		return Number(a / b), nil

	default:
		if b == 0 {
			return Unit(), ErrDivisionByZero.With(slog.String("operator", op.String()))
		}

		return Number(math.Mod(a, b)), nil
	}
}

func (v Value) compare(op Operator, rhs Value) (Value, error) {
	var c int

	switch {
	case v.Kind == KindNumber && rhs.Kind == KindNumber:
		switch {
		case v.Number < rhs.Number:
			c = -1
		case v.Number > rhs.Number:
			c = 1
		}

	case v.Kind == KindString && rhs.Kind == KindString:
		c = strings.Compare(v.Str, rhs.Str)

	default:
		return Unit(), operandError(op, v, rhs)
	}

	switch op {
	case OpLess:
		return Bool(c < 0), nil

	case OpLessEqual:
		return Bool(c <= 0), nil

	case OpGreater:
		return Bool(c > 0), nil

	default:
		return Bool(c >= 0), nil
	}
}

// integral converts f to a non-negative int if it has no fractional part.
func (Value) integral(f float64) (int, bool) {
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}

// Equal reports structural equality. Functions are never equal to anything,
// including themselves.
func (v Value) Equal(rhs Value) bool {
	if v.Kind != rhs.Kind {
		return false
	}

	switch v.Kind {
	case KindUnit:
		return true

	case KindNumber:
		return v.Number == rhs.Number

	case KindBoolean:
		return v.Bool == rhs.Bool

	case KindString:
		return v.Str == rhs.Str

	case KindList:
		return slices.EqualFunc(v.List, rhs.List, Value.Equal)

	case KindObject:
		if len(v.Object) != len(rhs.Object) {
			return false
		}

		for k, a := range v.Object {
			b, ok := rhs.Object[k]
			if !ok || !a.Equal(*b) {
				return false
			}
		}

		return true

	default:
		return false
	}
}

func operandError(op Operator, lhs, rhs Value) *Error {
	return ErrInvalidOperands.With(
		slog.String("operator", op.String()),
		slog.String("left", lhs.Kind.String()),
		slog.String("right", rhs.Kind.String()),
	)
}
