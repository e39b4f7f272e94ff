package lang

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/slang/log"
)

// parse tokenizes, reduces and parses source without consulting the cache.
func parse(ctx context.Context, s string, cfg config) (*Program, error) {
	tokens, err := Tokenize(s)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "tokenized", slog.Int("tokens", len(tokens)))

	nodes, err := reduce(tokens, 0, cfg.maxDepth)
	if err != nil {
		return nil, err
	}

	p := &parser{ctx: ctx, logger: cfg.logger, maxDepth: cfg.maxDepth}

	stmts, err := p.statements(nodes)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(stmts)))

	return &Program{Statements: stmts}, nil
}

// ParseExpression parses source as a single expression.
func ParseExpression(ctx context.Context, s string, opts ...Option) (Expression, error) {
	cfg := newConfig(opts...)

	tokens, err := Tokenize(s)
	if err != nil {
		return nil, err
	}

	nodes, err := reduce(tokens, 0, cfg.maxDepth)
	if err != nil {
		return nil, err
	}

	p := &parser{ctx: ctx, logger: cfg.logger, maxDepth: cfg.maxDepth}

	return p.expression(nodes)
}

// parser holds the parser state.
type parser struct {
	ctx      context.Context
	logger   log.Logger
	maxDepth int
	depth    int
}

// enter guards recursion depth. The returned func must be deferred.
func (p *parser) enter(nodes []Node) (func(), error) {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		p.depth--

		return nil, withNodePosition(
			ErrMaxDepthExceeded.With(slog.Int("depth", p.depth+1)), nodes)
	}

	return func() { p.depth-- }, nil
}

// statements splits a block's nodes at top-level semicolons. When the block
// does not end with a semicolon and its final statement is a bare
// expression, that statement becomes an ImplicitReturn.
func (p *parser) statements(nodes []Node) ([]Statement, error) {
	stmts := make([]Statement, 0, 4)
	start := 0

	for i := 0; i <= len(nodes); i++ {
		if i < len(nodes) && !nodes[i].is(TokenSemicolon) {
			continue
		}

		if i > start {
			stmt, err := p.statement(nodes[start:i])
			if err != nil {
				return nil, err
			}

			p.logger.TraceContext(p.ctx, "statement parsed",
				slog.String("type", statementName(stmt)),
				slog.String("pos", stmt.Position().String()))

			stmts = append(stmts, stmt)
		}

		start = i + 1
	}

	if len(nodes) > 0 && nodes[len(nodes)-1].is(TokenSemicolon) {
		return stmts, nil
	}

	if len(stmts) == 0 {
		return nil, ErrEmptyBlock
	}

	if es, ok := stmts[len(stmts)-1].(*ExprStatement); ok {
		stmts[len(stmts)-1] = &ImplicitReturn{Value: es.Expr, node: es.node}
	}

	return stmts, nil
}

// statement classifies one semicolon-free node slice.
func (p *parser) statement(nodes []Node) (Statement, error) {
	at := node{Pos: nodes[0].Pos}
	head := nodes[0]

	switch {
	case head.isKeyword(KeywordLet):
		if len(nodes) < 4 || !nodes[1].is(TokenIdentifier) || !nodes[2].is(TokenAssign) {
			return nil, withNodePosition(ErrInvalidDefinition, nodes)
		}

		value, err := p.expression(nodes[3:])
		if err != nil {
			return nil, err
		}

		return &VariableDefinition{Name: nodes[1].Token.Text, Value: value, node: at}, nil

	case head.isKeyword(KeywordReturn):
		value, err := p.optionalExpression(nodes[1:], head.Pos)
		if err != nil {
			return nil, err
		}

		return &Return{Value: value, node: at}, nil

	case head.isKeyword(KeywordBreak):
		value, err := p.optionalExpression(nodes[1:], head.Pos)
		if err != nil {
			return nil, err
		}

		return &Break{Value: value, node: at}, nil

	case head.isKeyword(KeywordContinue):
		if len(nodes) > 1 {
			return nil, withNodePosition(ErrInvalidContinue, nodes[1:])
		}

		return &Continue{node: at}, nil
	}

	for i, n := range nodes {
		if !n.is(TokenAssign) && !n.is(TokenOperatorAssign) {
			continue
		}

		ref, err := p.reference(nodes[:i], n.Pos)
		if err != nil {
			return nil, err
		}

		value, err := p.expression(nodes[i+1:])
		if err != nil {
			return nil, err
		}

		if n.is(TokenOperatorAssign) {
			value = &BinaryExpr{
				Left:  &RefExpr{Ref: ref, node: node{Pos: ref.Position()}},
				Right: value,
				Op:    n.Token.Operator,
				node:  node{Pos: n.Pos},
			}
		}

		return &VariableAssignment{Target: ref, Value: value, node: at}, nil
	}

	expr, err := p.expression(nodes)
	if err != nil {
		return nil, err
	}

	return &ExprStatement{Expr: expr, node: at}, nil
}

func (p *parser) optionalExpression(nodes []Node, pos Position) (Expression, error) {
	if len(nodes) == 0 {
		return &Literal{Value: Unit(), node: node{Pos: pos}}, nil
	}

	return p.expression(nodes)
}

// reference parses the left side of an assignment.
func (p *parser) reference(nodes []Node, pos Position) (Reference, error) {
	if len(nodes) == 0 {
		return nil, ErrInvalidAssignment.WithPosition(pos)
	}

	expr, err := p.expression(nodes)
	if err != nil {
		return nil, err
	}

	re, ok := expr.(*RefExpr)
	if !ok {
		return nil, withNodePosition(ErrInvalidAssignment, nodes)
	}

	return re.Ref, nil
}

// expression parses a non-empty node slice.
func (p *parser) expression(nodes []Node) (Expression, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyExpression
	}

	leave, err := p.enter(nodes)
	if err != nil {
		return nil, err
	}
	defer leave()

	if len(nodes) == 1 {
		return p.single(nodes[0])
	}

	at := node{Pos: nodes[0].Pos}

	// Closure literal: |params| body
	for i, n := range nodes {
		if n.Kind != NodeClosure {
			continue
		}

		if i != 0 {
			return nil, withNodePosition(ErrInvalidClosure, nodes[i:])
		}

		body, err := p.expression(nodes[1:])
		if err != nil {
			return nil, err
		}

		return &FunctionExpr{Params: n.Params, Body: body, node: at}, nil
	}

	switch {
	case nodes[0].isKeyword(KeywordFor):
		return p.forLoop(nodes)

	case nodes[0].isKeyword(KeywordWhile):
		return p.whileLoop(nodes)

	case nodes[0].isKeyword(KeywordIf):
		return p.ifElse(nodes)
	}

	if expr, ok, err := p.operator(nodes); ok || err != nil {
		return expr, err
	}

	return p.trailing(nodes)
}

// single parses a slice of exactly one node.
func (p *parser) single(n Node) (Expression, error) {
	at := node{Pos: n.Pos}

	switch n.Kind {
	case NodeBraces:
		switch {
		case len(n.Children) == 0:
			return &ObjectExpr{Fields: map[string]Expression{}, node: at}, nil

		case hasToken(n.Children, TokenColon):
			return p.object(n.Children, n.Pos)

		default:
			stmts, err := p.statements(n.Children)
			if err != nil {
				return nil, withNodePosition(WrapError(err), []Node{n})
			}

			return &BlockExpr{Statements: stmts, node: at}, nil
		}

	case NodeParens:
		if len(n.Children) == 0 {
			return &Literal{Value: Unit(), node: at}, nil
		}

		return p.expression(n.Children)

	case NodeBrackets:
		items, err := p.commaSeparated(n.Children)
		if err != nil {
			return nil, err
		}

		return &ListExpr{Items: items, node: at}, nil

	case NodeToken:
		switch {
		case n.Token.isLiteral():
			return &Literal{Value: n.Token.Value, node: at}, nil

		case n.is(TokenIdentifier):
			return &RefExpr{Ref: &VariableRef{Name: n.Token.Text, node: at}, node: at}, nil
		}

		return nil, ErrInvalidToken.WithPosition(n.Pos).
			With(slog.String("token", n.Token.String()))

	default:
		return nil, ErrInvalidClosure.WithPosition(n.Pos)
	}
}

// object parses the contents of a braced group holding "name: expr" pairs.
func (p *parser) object(children []Node, pos Position) (Expression, error) {
	fields := make(map[string]Expression)

	for _, part := range splitCommas(children) {
		if len(part) < 3 || !part[0].is(TokenIdentifier) || !part[1].is(TokenColon) {
			if len(part) == 0 {
				return nil, ErrInvalidField.WithPosition(pos)
			}

			return nil, withNodePosition(ErrInvalidField, part)
		}

		name := part[0].Token.Text
		if _, dup := fields[name]; dup {
			return nil, ErrDuplicateField.WithPosition(part[0].Pos).
				With(slog.String("field", name))
		}

		value, err := p.expression(part[2:])
		if err != nil {
			return nil, err
		}

		fields[name] = value
	}

	return &ObjectExpr{Fields: fields, node: node{Pos: pos}}, nil
}

// commaSeparated parses each comma-separated segment as an expression. An
// empty slice yields no expressions.
func (p *parser) commaSeparated(nodes []Node) ([]Expression, error) {
	if len(nodes) == 0 {
		return []Expression{}, nil
	}

	parts := splitCommas(nodes)
	exprs := make([]Expression, 0, len(parts))

	for _, part := range parts {
		expr, err := p.expression(part)
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expr)
	}

	return exprs, nil
}

// forLoop parses: for name in iterable body.
func (p *parser) forLoop(nodes []Node) (Expression, error) {
	if len(nodes) < 5 || !nodes[1].is(TokenIdentifier) || !nodes[2].isKeyword(KeywordIn) {
		return nil, withNodePosition(ErrInvalidFor, nodes)
	}

	iterable, err := p.expression(nodes[3 : len(nodes)-1])
	if err != nil {
		return nil, err
	}

	body, err := p.loopBody(nodes[len(nodes)-1], ErrInvalidFor)
	if err != nil {
		return nil, err
	}

	return &ForLoop{
		Name:     nodes[1].Token.Text,
		Iterable: iterable,
		Body:     body,
		node:     node{Pos: nodes[0].Pos},
	}, nil
}

// whileLoop parses: while cond body.
func (p *parser) whileLoop(nodes []Node) (Expression, error) {
	if len(nodes) < 3 {
		return nil, withNodePosition(ErrInvalidWhile, nodes)
	}

	cond, err := p.expression(nodes[1 : len(nodes)-1])
	if err != nil {
		return nil, err
	}

	body, err := p.loopBody(nodes[len(nodes)-1], ErrInvalidWhile)
	if err != nil {
		return nil, err
	}

	return &WhileLoop{Cond: cond, Body: body, node: node{Pos: nodes[0].Pos}}, nil
}

// loopBody parses a body node that must be a block. An empty braced group
// stands in for an empty block.
func (p *parser) loopBody(n Node, kind *Error) (*BlockExpr, error) {
	if n.Kind != NodeBraces {
		return nil, kind.Wrap(ErrInvalidBody).WithPosition(n.Pos)
	}

	expr, err := p.single(n)
	if err != nil {
		return nil, err
	}

	switch e := expr.(type) {
	case *BlockExpr:
		return e, nil

	case *ObjectExpr:
		if len(e.Fields) == 0 {
			return &BlockExpr{Statements: []Statement{}, node: e.node}, nil
		}
	}

	return nil, kind.Wrap(ErrInvalidBody).WithPosition(n.Pos)
}

// ifElse parses: if cond block [else (block | if ...)].
func (p *parser) ifElse(nodes []Node) (Expression, error) {
	elseAt := -1

	for i, n := range nodes {
		if n.isKeyword(KeywordElse) {
			elseAt = i

			break
		}
	}

	thenAt := len(nodes) - 1
	if elseAt >= 0 {
		thenAt = elseAt - 1
	}

	if thenAt < 2 {
		return nil, withNodePosition(ErrInvalidIf, nodes)
	}

	cond, err := p.expression(nodes[1:thenAt])
	if err != nil {
		return nil, err
	}

	then, err := p.loopBody(nodes[thenAt], ErrInvalidIf)
	if err != nil {
		return nil, err
	}

	expr := &IfElse{Cond: cond, Then: then, node: node{Pos: nodes[0].Pos}}

	if elseAt < 0 {
		return expr, nil
	}

	rest := nodes[elseAt+1:]

	switch {
	case len(rest) == 0:
		return nil, ErrInvalidIf.WithPosition(nodes[elseAt].Pos)

	case rest[0].isKeyword(KeywordIf):
		expr.Else, err = p.expression(rest)

	case len(rest) == 1:
		expr.Else, err = p.loopBody(rest[0], ErrInvalidIf)

	default:
		return nil, withNodePosition(ErrInvalidIf, rest)
	}

	if err != nil {
		return nil, err
	}

	return expr, nil
}

// operator splits nodes at the loosest-binding top-level operator. Among
// operators of equal precedence the rightmost wins, which makes binary
// operators left-associative. An operator at the start of nodes or directly
// following another operator is a prefix of its right operand and is only
// applied when no binary split exists. Operators after a control keyword
// belong to that construct.
func (p *parser) operator(nodes []Node) (Expression, bool, error) {
	split := -1
	lowest := 0

	for i, n := range nodes {
		if n.isKeyword(KeywordIf) || n.isKeyword(KeywordWhile) || n.isKeyword(KeywordFor) {
			break
		}

		if i == 0 || !n.is(TokenOperator) || nodes[i-1].is(TokenOperator) {
			continue
		}

		if prec := n.Token.Operator.Precedence(); split < 0 || prec <= lowest {
			split, lowest = i, prec
		}
	}

	if split < 0 {
		if !nodes[0].is(TokenOperator) {
			return nil, false, nil
		}

		split = 0
	}

	op := nodes[split].Token.Operator
	at := node{Pos: nodes[split].Pos}

	if split == 0 {
		unary, ok := unaryOf(op)
		if !ok {
			return nil, true, ErrInvalidUnary.WithPosition(nodes[0].Pos).
				With(slog.String("operator", op.String()))
		}

		operand, err := p.expression(nodes[1:])
		if err != nil {
			return nil, true, err
		}

		return &UnaryExpr{Operand: operand, Op: unary, node: at}, true, nil
	}

	if split == len(nodes)-1 {
		return nil, true, ErrEmptyExpression.WithPosition(nodes[split].Pos).
			With(slog.String("operator", op.String()))
	}

	left, err := p.expression(nodes[:split])
	if err != nil {
		return nil, true, err
	}

	right, err := p.expression(nodes[split+1:])
	if err != nil {
		return nil, true, err
	}

	return &BinaryExpr{Left: left, Right: right, Op: op, node: at}, true, nil
}

// trailing parses call, index and field shapes at the end of nodes.
func (p *parser) trailing(nodes []Node) (Expression, error) {
	last := nodes[len(nodes)-1]
	at := node{Pos: last.Pos}

	switch {
	case last.Kind == NodeParens:
		callee, err := p.expression(nodes[:len(nodes)-1])
		if err != nil {
			return nil, err
		}

		args, err := p.commaSeparated(last.Children)
		if err != nil {
			return nil, err
		}

		return &CallExpr{Callee: callee, Args: args, node: at}, nil

	case last.Kind == NodeBrackets:
		container, err := p.expression(nodes[:len(nodes)-1])
		if err != nil {
			return nil, err
		}

		index, err := p.expression(last.Children)
		if err != nil {
			return nil, err
		}

		ref := &IndexRef{Container: container, Index: index, node: at}

		return &RefExpr{Ref: ref, node: at}, nil

	case last.is(TokenIdentifier) && len(nodes) > 2 && nodes[len(nodes)-2].is(TokenDot):
		container, err := p.expression(nodes[:len(nodes)-2])
		if err != nil {
			return nil, err
		}

		ref := &FieldRef{Container: container, Field: last.Token.Text, node: at}

		return &RefExpr{Ref: ref, node: at}, nil
	}

	return nil, withNodePosition(ErrMissingSeparator, nodes).
		With(slog.String("nodes", strconv.Itoa(len(nodes))))
}

func hasToken(nodes []Node, kind TokenKind) bool {
	for _, n := range nodes {
		if n.is(kind) {
			return true
		}
	}

	return false
}

// splitCommas splits nodes at top-level commas. The result always holds at
// least one (possibly empty) segment.
func splitCommas(nodes []Node) [][]Node {
	parts := make([][]Node, 0, 4)
	start := 0

	for i, n := range nodes {
		if n.is(TokenComma) {
			parts = append(parts, nodes[start:i])
			start = i + 1
		}
	}

	return append(parts, nodes[start:])
}

func statementName(stmt Statement) string {
	switch stmt.(type) {
	case *VariableDefinition:
		return "VariableDefinition"

	case *VariableAssignment:
		return "VariableAssignment"

	case *Return:
		return "Return"

	case *Break:
		return "Break"

	case *Continue:
		return "Continue"

	case *ImplicitReturn:
		return "ImplicitReturn"

	default:
		return "Expr"
	}
}
