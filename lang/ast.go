package lang

import (
	"context"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// NodeKind identifies the shape of a reduced Node.
type NodeKind int

const (
	NodeToken NodeKind = iota
	NodeParens
	NodeBraces
	NodeBrackets
	NodeClosure
)

// Node is an element of a reduced token sequence: either a single token or a
// balanced group whose children are themselves reduced. A closure group
// carries only its parameter names.
type Node struct {
	Children []Node
	Params   []string // Closure parameter names
	Token    Token    // Set for NodeToken
	Pos      Position // Position of the token or opening delimiter
	Kind     NodeKind
}

// is reports whether the node is a token of the given kind.
func (n Node) is(kind TokenKind) bool {
	return n.Kind == NodeToken && n.Token.Kind == kind
}

// isKeyword reports whether the node is the given keyword token.
func (n Node) isKeyword(kw Keyword) bool {
	return n.is(TokenKeyword) && n.Token.Keyword == kw
}

func firstPosition(nodes []Node) (Position, bool) {
	if len(nodes) == 0 {
		return Position{}, false
	}

	return nodes[0].Pos, true
}

// Program is a parsed source: an ordered, read-only statement list.
// Programs may be evaluated any number of times.
type Program struct {
	Statements []Statement
}

// Statement is one of the statement node types declared in this file.
type Statement interface {
	Position() Position
	statement()
}

// Expression is one of the expression node types declared in this file.
type Expression interface {
	Position() Position
	expression()
}

// Reference is an assignable location.
type Reference interface {
	Position() Position
	reference()
}

type node struct {
	Pos Position
}

// Position returns the source position of the node.
func (n node) Position() Position { return n.Pos }

type (
	// VariableDefinition binds a new name in the innermost scope:
	// let Name = Value.
	VariableDefinition struct {
		Value Expression
		Name  string
		node
	}

	// VariableAssignment overwrites an existing location: Target = Value.
	VariableAssignment struct {
		Target Reference
		Value  Expression
		node
	}

	// ExprStatement evaluates an expression for its effects.
	ExprStatement struct {
		Expr Expression
		node
	}

	// Return exits the enclosing function with Value.
	Return struct {
		Value Expression
		node
	}

	// Break exits the enclosing loop with Value.
	Break struct {
		Value Expression
		node
	}

	// Continue skips to the next iteration of the enclosing loop.
	Continue struct {
		node
	}

	// ImplicitReturn is a trailing unterminated expression whose value
	// becomes the value of the enclosing block.
	ImplicitReturn struct {
		Value Expression
		node
	}
)

func (*VariableDefinition) statement() {}
func (*VariableAssignment) statement() {}
func (*ExprStatement) statement()      {}
func (*Return) statement()             {}
func (*Break) statement()              {}
func (*Continue) statement()           {}
func (*ImplicitReturn) statement()     {}

type (
	// Literal is a constant value.
	Literal struct {
		Value Value
		node
	}

	// ListExpr constructs a list.
	ListExpr struct {
		Items []Expression
		node
	}

	// ObjectExpr constructs an object.
	ObjectExpr struct {
		Fields map[string]Expression
		node
	}

	// RefExpr reads a reference.
	RefExpr struct {
		Ref Reference
		node
	}

	// BinaryExpr applies an infix operator.
	BinaryExpr struct {
		Left  Expression
		Right Expression
		Op    Operator
		node
	}

	// UnaryExpr applies a prefix operator.
	UnaryExpr struct {
		Operand Expression
		Op      UnaryOperator
		node
	}

	// BlockExpr runs statements in a new scope layer.
	BlockExpr struct {
		Statements []Statement
		node
	}

	// CallExpr invokes a function value.
	CallExpr struct {
		Callee Expression
		Args   []Expression
		node
	}

	// IfElse evaluates Then or Else by the value of Cond. Else is nil when
	// absent.
	IfElse struct {
		Cond Expression
		Then Expression
		Else Expression
		node
	}

	// ForLoop binds Name to each element of Iterable and evaluates Body.
	ForLoop struct {
		Iterable Expression
		Body     *BlockExpr
		Name     string
		node
	}

	// WhileLoop evaluates Body while Cond is true.
	WhileLoop struct {
		Cond Expression
		Body *BlockExpr
		node
	}

	// FunctionExpr is a closure literal.
	FunctionExpr struct {
		Body   Expression
		Params []string
		node
	}
)

func (*Literal) expression()      {}
func (*ListExpr) expression()     {}
func (*ObjectExpr) expression()   {}
func (*RefExpr) expression()      {}
func (*BinaryExpr) expression()   {}
func (*UnaryExpr) expression()    {}
func (*BlockExpr) expression()    {}
func (*CallExpr) expression()     {}
func (*IfElse) expression()       {}
func (*ForLoop) expression()      {}
func (*WhileLoop) expression()    {}
func (*FunctionExpr) expression() {}

type (
	// VariableRef names a binding.
	VariableRef struct {
		Name string
		node
	}

	// IndexRef selects a list element.
	IndexRef struct {
		Container Expression
		Index     Expression
		node
	}

	// FieldRef selects an object field.
	FieldRef struct {
		Container Expression
		Field     string
		node
	}
)

func (*VariableRef) reference() {}
func (*IndexRef) reference()    {}
func (*FieldRef) reference()    {}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// Print writes an indented tree representation of the program.
func (p *Program) Print(ctx context.Context, w io.Writer) {
	p.PrintIndent(ctx, w, 0)
}

// PrintIndent writes an indented tree representation of the program
// starting at the given indentation.
func (p *Program) PrintIndent(ctx context.Context, w io.Writer, indent int) {
	for _, stmt := range p.Statements {
		printStatement(w, stmt, indent)
	}
}

func printStatement(w io.Writer, stmt Statement, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch s := stmt.(type) {
	case *VariableDefinition:
		put("\n", prefix+"Define", s.Name)
		printExpression(w, s.Value, indent+1)

	case *VariableAssignment:
		put("\n", prefix+"Assign")
		printReference(w, s.Target, indent+1)
		printExpression(w, s.Value, indent+1)

	case *ExprStatement:
		put("\n", prefix+"Expr")
		printExpression(w, s.Expr, indent+1)

	case *Return:
		put("\n", prefix+"Return")
		printExpression(w, s.Value, indent+1)

	case *Break:
		put("\n", prefix+"Break")
		printExpression(w, s.Value, indent+1)

	case *Continue:
		put("\n", prefix+"Continue")

	case *ImplicitReturn:
		put("\n", prefix+"ImplicitReturn")
		printExpression(w, s.Value, indent+1)
	}
}

func printExpression(w io.Writer, expr Expression, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch e := expr.(type) {
	case *Literal:
		put("\n", prefix+e.Value.Kind.String(), e.Value.Source())

	case *ListExpr:
		put("\n", prefix+"List", strconv.Itoa(len(e.Items)))

		for _, item := range e.Items {
			printExpression(w, item, indent+1)
		}

	case *ObjectExpr:
		put("\n", prefix+"Object", strconv.Itoa(len(e.Fields)))

		for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
			put("\n", prefix+"  Field", k)
			printExpression(w, e.Fields[k], indent+2)
		}

	case *RefExpr:
		printReference(w, e.Ref, indent)

	case *BinaryExpr:
		put("\n", prefix+"Binary", e.Op.String())
		printExpression(w, e.Left, indent+1)
		printExpression(w, e.Right, indent+1)

	case *UnaryExpr:
		put("\n", prefix+"Unary", e.Op.String())
		printExpression(w, e.Operand, indent+1)

	case *BlockExpr:
		if len(e.Statements) == 0 {
			put("\n", prefix+"Block", "(empty)")

			return
		}

		put("\n", prefix+"Block")

		for _, stmt := range e.Statements {
			printStatement(w, stmt, indent+1)
		}

	case *CallExpr:
		put("\n", prefix+"Call", strconv.Itoa(len(e.Args)))
		printExpression(w, e.Callee, indent+1)

		for _, arg := range e.Args {
			printExpression(w, arg, indent+1)
		}

	case *IfElse:
		put("\n", prefix+"If")
		printExpression(w, e.Cond, indent+1)
		printExpression(w, e.Then, indent+1)

		if e.Else != nil {
			put("\n", prefix+"Else")
			printExpression(w, e.Else, indent+1)
		}

	case *ForLoop:
		put("\n", prefix+"For", e.Name)
		printExpression(w, e.Iterable, indent+1)
		printExpression(w, e.Body, indent+1)

	case *WhileLoop:
		put("\n", prefix+"While")
		printExpression(w, e.Cond, indent+1)
		printExpression(w, e.Body, indent+1)

	case *FunctionExpr:
		put("\n", prefix+"Function", "|"+strings.Join(e.Params, ", ")+"|")
		printExpression(w, e.Body, indent+1)
	}
}

func printReference(w io.Writer, ref Reference, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch r := ref.(type) {
	case *VariableRef:
		put("\n", prefix+"Variable", r.Name)

	case *IndexRef:
		put("\n", prefix+"Index")
		printExpression(w, r.Container, indent+1)
		printExpression(w, r.Index, indent+1)

	case *FieldRef:
		put("\n", prefix+"Field", r.Field)
		printExpression(w, r.Container, indent+1)
	}
}
