package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program as canonical source. Every binary operation is
// parenthesized, so parsing the output yields an equivalent program.
// With indent > 0, statements are written one per line and block bodies are
// indented by that many spaces per level.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	f := &formatter{indent: indent}

	for i, stmt := range p.Statements {
		if i > 0 {
			f.newline(0)
		}

		f.statement(stmt)
	}

	f.sb.WriteByte('\n')

	_, err := io.WriteString(w, f.sb.String())

	return err
}

// FormatJSON writes the program's syntax tree as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the program's syntax tree as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, p.ToNative(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatExpression returns the canonical source of a single expression.
func FormatExpression(expr Expression) string {
	f := &formatter{}
	f.expression(expr)

	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

func (f *formatter) newline(depth int) {
	if f.indent <= 0 {
		f.sb.WriteByte(' ')

		return
	}

	f.sb.WriteByte('\n')
	f.sb.WriteString(strings.Repeat(" ", depth*f.indent))
}

func (f *formatter) statement(stmt Statement) {
	f.statementAt(stmt, 0)
}

func (f *formatter) statementAt(stmt Statement, depth int) {
	switch s := stmt.(type) {
	case *VariableDefinition:
		f.sb.WriteString("let " + s.Name + " = ")
		f.expressionAt(s.Value, depth)

	case *VariableAssignment:
		f.reference(s.Target, depth)
		f.sb.WriteString(" = ")
		f.expressionAt(s.Value, depth)

	case *ExprStatement:
		f.expressionAt(s.Expr, depth)

	case *Return:
		f.sb.WriteString("return ")
		f.expressionAt(s.Value, depth)

	case *Break:
		f.sb.WriteString("break ")
		f.expressionAt(s.Value, depth)

	case *Continue:
		f.sb.WriteString("continue")

	case *ImplicitReturn:
		f.expressionAt(s.Value, depth)

		return
	}

	f.sb.WriteByte(';')
}

func (f *formatter) expression(expr Expression) {
	f.expressionAt(expr, 0)
}

func (f *formatter) expressionAt(expr Expression, depth int) {
	switch e := expr.(type) {
	case *Literal:
		f.sb.WriteString(e.Value.Source())

	case *ListExpr:
		f.sb.WriteByte('[')

		for i, item := range e.Items {
			if i > 0 {
				f.sb.WriteString(", ")
			}

			f.expressionAt(item, depth)
		}

		f.sb.WriteByte(']')

	case *ObjectExpr:
		if len(e.Fields) == 0 {
			f.sb.WriteString("{}")

			return
		}

		f.sb.WriteString("{ ")

		for i, k := range slices.Sorted(maps.Keys(e.Fields)) {
			if i > 0 {
				f.sb.WriteString(", ")
			}

			f.sb.WriteString(k + ": ")
			f.expressionAt(e.Fields[k], depth)
		}

		f.sb.WriteString(" }")

	case *RefExpr:
		f.reference(e.Ref, depth)

	case *BinaryExpr:
		f.sb.WriteByte('(')
		f.operand(e.Left, depth)
		f.sb.WriteString(" " + e.Op.String() + " ")
		f.operand(e.Right, depth)
		f.sb.WriteByte(')')

	case *UnaryExpr:
		f.sb.WriteString(e.Op.String())

		if e.Op == UnaryNot {
			f.sb.WriteByte(' ')
		}

		if _, ok := e.Operand.(*UnaryExpr); ok {
			f.wrapped(e.Operand, depth)
		} else {
			f.operand(e.Operand, depth)
		}

	case *BlockExpr:
		f.block(e, depth, false)

	case *CallExpr:
		f.primary(e.Callee, depth)
		f.sb.WriteByte('(')

		for i, arg := range e.Args {
			if i > 0 {
				f.sb.WriteString(", ")
			}

			f.expressionAt(arg, depth)
		}

		f.sb.WriteByte(')')

	case *IfElse:
		f.sb.WriteString("if ")
		f.expressionAt(e.Cond, depth)
		f.sb.WriteByte(' ')
		f.body(e.Then, depth)

		if e.Else != nil {
			f.sb.WriteString(" else ")

			if _, ok := e.Else.(*IfElse); ok {
				f.expressionAt(e.Else, depth)
			} else {
				f.body(e.Else, depth)
			}
		}

	case *ForLoop:
		f.sb.WriteString("for " + e.Name + " in ")
		f.expressionAt(e.Iterable, depth)
		f.sb.WriteByte(' ')
		f.block(e.Body, depth, true)

	case *WhileLoop:
		f.sb.WriteString("while ")
		f.expressionAt(e.Cond, depth)
		f.sb.WriteByte(' ')
		f.block(e.Body, depth, true)

	case *FunctionExpr:
		f.sb.WriteString("|" + strings.Join(e.Params, ", ") + "| ")
		f.expressionAt(e.Body, depth)
	}
}

// operand writes an operator operand, parenthesizing constructs that would
// otherwise absorb the rest of the enclosing expression.
func (f *formatter) operand(expr Expression, depth int) {
	switch expr.(type) {
	case *IfElse, *ForLoop, *WhileLoop, *FunctionExpr:
		f.wrapped(expr, depth)

	default:
		f.expressionAt(expr, depth)
	}
}

// primary writes the container of a reference or the callee of a call.
func (f *formatter) primary(expr Expression, depth int) {
	switch expr.(type) {
	case *RefExpr, *CallExpr, *ListExpr:
		f.expressionAt(expr, depth)

	default:
		f.wrapped(expr, depth)
	}
}

func (f *formatter) wrapped(expr Expression, depth int) {
	f.sb.WriteByte('(')
	f.expressionAt(expr, depth)
	f.sb.WriteByte(')')
}

func (f *formatter) body(expr Expression, depth int) {
	if b, ok := expr.(*BlockExpr); ok {
		f.block(b, depth, true)

		return
	}

	f.expressionAt(expr, depth)
}

// block writes a braced statement list. An empty block is written as "{}"
// where an empty braced group stands in for a block, and as "{;}" elsewhere.
func (f *formatter) block(b *BlockExpr, depth int, sentinel bool) {
	if len(b.Statements) == 0 {
		if sentinel {
			f.sb.WriteString("{}")
		} else {
			f.sb.WriteString("{;}")
		}

		return
	}

	f.sb.WriteByte('{')

	for _, stmt := range b.Statements {
		f.newline(depth + 1)
		f.statementAt(stmt, depth+1)
	}

	f.newline(depth)
	f.sb.WriteByte('}')
}

func (f *formatter) reference(ref Reference, depth int) {
	switch r := ref.(type) {
	case *VariableRef:
		f.sb.WriteString(r.Name)

	case *IndexRef:
		f.primary(r.Container, depth)
		f.sb.WriteByte('[')
		f.expressionAt(r.Index, depth)
		f.sb.WriteByte(']')

	case *FieldRef:
		f.primary(r.Container, depth)
		f.sb.WriteString("." + r.Field)
	}
}
