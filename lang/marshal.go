package lang

import (
	"encoding/json"
	"strings"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToNative())
}

// ToNative converts the program to native Go data: a slice holding one map
// per statement. Every map carries a "type" key naming its node.
func (p *Program) ToNative() []any {
	result := make([]any, len(p.Statements))
	for i, stmt := range p.Statements {
		result[i] = StatementToNative(stmt)
	}

	return result
}

// StatementToNative converts a statement to a native Go map.
func StatementToNative(stmt Statement) map[string]any {
	switch s := stmt.(type) {
	case *VariableDefinition:
		return map[string]any{
			"type":  "VariableDefinition",
			"name":  s.Name,
			"value": ExpressionToNative(s.Value),
		}

	case *VariableAssignment:
		return map[string]any{
			"type":   "VariableAssignment",
			"target": referenceToNative(s.Target),
			"value":  ExpressionToNative(s.Value),
		}

	case *ExprStatement:
		return map[string]any{
			"type": "Expr",
			"expr": ExpressionToNative(s.Expr),
		}

	case *Return:
		return map[string]any{
			"type":  "Return",
			"value": ExpressionToNative(s.Value),
		}

	case *Break:
		return map[string]any{
			"type":  "Break",
			"value": ExpressionToNative(s.Value),
		}

	case *Continue:
		return map[string]any{"type": "Continue"}

	case *ImplicitReturn:
		return map[string]any{
			"type":  "ImplicitReturn",
			"value": ExpressionToNative(s.Value),
		}

	default:
		return nil
	}
}

// ExpressionToNative converts an expression to a native Go map.
func ExpressionToNative(expr Expression) map[string]any {
	switch e := expr.(type) {
	case *Literal:
		return map[string]any{
			"type":  "Literal",
			"kind":  e.Value.Kind.String(),
			"value": e.Value.Native(),
		}

	case *ListExpr:
		return map[string]any{
			"type":  "List",
			"items": expressionsToNative(e.Items),
		}

	case *ObjectExpr:
		fields := make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			fields[k] = ExpressionToNative(v)
		}

		return map[string]any{
			"type":   "Object",
			"fields": fields,
		}

	case *RefExpr:
		return referenceToNative(e.Ref)

	case *BinaryExpr:
		return map[string]any{
			"type":  "Binary",
			"op":    e.Op.String(),
			"left":  ExpressionToNative(e.Left),
			"right": ExpressionToNative(e.Right),
		}

	case *UnaryExpr:
		return map[string]any{
			"type":    "Unary",
			"op":      e.Op.String(),
			"operand": ExpressionToNative(e.Operand),
		}

	case *BlockExpr:
		stmts := make([]any, len(e.Statements))
		for i, stmt := range e.Statements {
			stmts[i] = StatementToNative(stmt)
		}

		return map[string]any{
			"type":       "Block",
			"statements": stmts,
		}

	case *CallExpr:
		return map[string]any{
			"type":   "Call",
			"callee": ExpressionToNative(e.Callee),
			"args":   expressionsToNative(e.Args),
		}

	case *IfElse:
		m := map[string]any{
			"type": "If",
			"cond": ExpressionToNative(e.Cond),
			"then": ExpressionToNative(e.Then),
		}

		if e.Else != nil {
			m["else"] = ExpressionToNative(e.Else)
		}

		return m

	case *ForLoop:
		return map[string]any{
			"type":     "For",
			"name":     e.Name,
			"iterable": ExpressionToNative(e.Iterable),
			"body":     ExpressionToNative(e.Body),
		}

	case *WhileLoop:
		return map[string]any{
			"type": "While",
			"cond": ExpressionToNative(e.Cond),
			"body": ExpressionToNative(e.Body),
		}

	case *FunctionExpr:
		return map[string]any{
			"type":   "Function",
			"params": "|" + strings.Join(e.Params, ", ") + "|",
			"body":   ExpressionToNative(e.Body),
		}

	default:
		return nil
	}
}

func expressionsToNative(exprs []Expression) []any {
	result := make([]any, len(exprs))
	for i, expr := range exprs {
		result[i] = ExpressionToNative(expr)
	}

	return result
}

func referenceToNative(ref Reference) map[string]any {
	switch r := ref.(type) {
	case *VariableRef:
		return map[string]any{
			"type": "Variable",
			"name": r.Name,
		}

	case *IndexRef:
		return map[string]any{
			"type":      "Index",
			"container": ExpressionToNative(r.Container),
			"index":     ExpressionToNative(r.Index),
		}

	case *FieldRef:
		return map[string]any{
			"type":      "Field",
			"container": ExpressionToNative(r.Container),
			"field":     r.Field,
		}

	default:
		return nil
	}
}
