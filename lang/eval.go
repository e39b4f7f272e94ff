package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/slang/log"
)

// flow is the control-flow signal produced alongside every value.
type flow int

const (
	flowNormal flow = iota
	flowReturn
	flowBreak
	flowContinue
)

func (f flow) String() string {
	switch f {
	case flowReturn:
		return "return"

	case flowBreak:
		return "break"

	case flowContinue:
		return "continue"

	default:
		return "normal"
	}
}

// builtinPrint is the name of the only built-in function. A user binding of
// the same name shadows it.
const builtinPrint = "print"

// evaluator walks a program against a Context.
type evaluator struct {
	ctx      context.Context
	out      io.Writer
	logger   log.Logger
	maxCalls int
	calls    int
}

// at attaches the position of n to err.
func at(err error, n interface{ Position() Position }) error {
	if err == nil {
		return nil
	}

	return WrapError(err).WithPosition(n.Position())
}

// program runs top-level statements directly in c, so top-level definitions
// remain bound afterward.
func (e *evaluator) program(c *Context, stmts []Statement) (Value, error) {
	v, f, err := e.statements(c, stmts)
	if err != nil {
		return Unit(), err
	}

	switch f {
	case flowBreak, flowContinue:
		return Unit(), ErrStrayControl.With(slog.String("signal", f.String()))
	}

	return v, nil
}

// statements runs stmts in order until one yields a non-normal flow or an
// implicit return.
func (e *evaluator) statements(c *Context, stmts []Statement) (Value, flow, error) {
	for _, stmt := range stmts {
		v, f, err := e.statement(c, stmt)
		if err != nil {
			return Unit(), flowNormal, err
		}

		if f != flowNormal {
			return v, f, nil
		}

		if _, ok := stmt.(*ImplicitReturn); ok {
			return v, flowNormal, nil
		}
	}

	return Unit(), flowNormal, nil
}

func (e *evaluator) statement(c *Context, stmt Statement) (Value, flow, error) {
	switch s := stmt.(type) {
	case *VariableDefinition:
		v, f, err := e.expr(c, s.Value)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		return Unit(), flowNormal, at(c.Define(s.Name, v), s)

	case *VariableAssignment:
		v, f, err := e.expr(c, s.Value)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		slot, err := e.slot(c, s.Target)
		if err != nil {
			return Unit(), flowNormal, at(err, s)
		}

		*slot = v

		return Unit(), flowNormal, nil

	case *ExprStatement:
		v, f, err := e.expr(c, s.Expr)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		return Unit(), flowNormal, nil

	case *Return:
		v, f, err := e.expr(c, s.Value)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		return v, flowReturn, nil

	case *Break:
		v, f, err := e.expr(c, s.Value)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		return v, flowBreak, nil

	case *Continue:
		return Unit(), flowContinue, nil

	case *ImplicitReturn:
		return e.expr(c, s.Value)

	default:
		return Unit(), flowNormal, ErrInvalidToken
	}
}

// expr evaluates an expression. A control-flow signal raised anywhere inside
// it, such as a return in an argument block, propagates unchanged.
func (e *evaluator) expr(c *Context, expr Expression) (Value, flow, error) {
	switch x := expr.(type) {
	case *Literal:
		return x.Value.Clone(), flowNormal, nil

	case *ListExpr:
		items := make([]Value, 0, len(x.Items))

		for _, item := range x.Items {
			v, f, err := e.expr(c, item)
			if err != nil || f != flowNormal {
				return v, f, err
			}

			items = append(items, v)
		}

		return List(items...), flowNormal, nil

	case *ObjectExpr:
		obj := make(map[string]*Value, len(x.Fields))

		for name, field := range x.Fields {
			v, f, err := e.expr(c, field)
			if err != nil || f != flowNormal {
				return v, f, err
			}

			obj[name] = &v
		}

		return Value{Kind: KindObject, Object: obj}, flowNormal, nil

	case *RefExpr:
		v, f, err := e.peek(c, x.Ref)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		return v.Clone(), flowNormal, nil

	case *BinaryExpr:
		return e.binary(c, x)

	case *UnaryExpr:
		v, f, err := e.expr(c, x.Operand)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		r, err := v.Unary(x.Op)

		return r, flowNormal, at(err, x)

	case *BlockExpr:
		return e.block(c, x)

	case *CallExpr:
		return e.call(c, x)

	case *IfElse:
		return e.ifElse(c, x)

	case *ForLoop:
		return e.forLoop(c, x)

	case *WhileLoop:
		return e.whileLoop(c, x)

	case *FunctionExpr:
		return Func(x.Params, x.Body), flowNormal, nil

	default:
		return Unit(), flowNormal, ErrInvalidToken
	}
}

func (e *evaluator) block(c *Context, b *BlockExpr) (Value, flow, error) {
	c.Push()
	defer c.Pop()

	return e.statements(c, b.Statements)
}

func (e *evaluator) binary(c *Context, x *BinaryExpr) (Value, flow, error) {
	lhs, f, err := e.expr(c, x.Left)
	if err != nil || f != flowNormal {
		return lhs, f, err
	}

	if x.Op == OpAnd || x.Op == OpOr {
		if lhs.Kind != KindBoolean {
			return Unit(), flowNormal, at(operandError(x.Op, lhs, Unit()), x)
		}

		if lhs.Bool == (x.Op == OpOr) {
			return lhs, flowNormal, nil
		}
	}

	rhs, f, err := e.expr(c, x.Right)
	if err != nil || f != flowNormal {
		return rhs, f, err
	}

	v, err := lhs.Binary(x.Op, rhs)

	return v, flowNormal, at(err, x)
}

func (e *evaluator) condition(c *Context, cond Expression) (bool, Value, flow, error) {
	v, f, err := e.expr(c, cond)
	if err != nil || f != flowNormal {
		return false, v, f, err
	}

	if v.Kind != KindBoolean {
		return false, Unit(), flowNormal, at(
			ErrConditionType.With(slog.String("kind", v.Kind.String())), cond)
	}

	return v.Bool, v, flowNormal, nil
}

func (e *evaluator) ifElse(c *Context, x *IfElse) (Value, flow, error) {
	ok, v, f, err := e.condition(c, x.Cond)
	if err != nil || f != flowNormal {
		return v, f, err
	}

	switch {
	case ok:
		return e.expr(c, x.Then)

	case x.Else != nil:
		return e.expr(c, x.Else)

	default:
		return Unit(), flowNormal, nil
	}
}

// iterate runs one loop body and reports whether the loop must stop.
func (e *evaluator) iterate(c *Context, body *BlockExpr) (Value, flow, bool, error) {
	if err := e.ctx.Err(); err != nil {
		return Unit(), flowNormal, true, at(ErrCanceled.Wrap(err), body)
	}

	v, f, err := e.block(c, body)
	if err != nil {
		return Unit(), flowNormal, true, err
	}

	switch f {
	case flowBreak:
		return v, flowNormal, true, nil

	case flowReturn:
		return v, flowReturn, true, nil

	default:
		return Unit(), flowNormal, false, nil
	}
}

func (e *evaluator) whileLoop(c *Context, x *WhileLoop) (Value, flow, error) {
	for n := 0; ; n++ {
		ok, v, f, err := e.condition(c, x.Cond)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		if !ok {
			return Unit(), flowNormal, nil
		}

		e.logger.TraceContext(e.ctx, "loop iteration",
			slog.String("loop", "while"), slog.Int("n", n))

		v, f, stop, err := e.iterate(c, x.Body)
		if stop || err != nil {
			return v, f, err
		}
	}
}

func (e *evaluator) forLoop(c *Context, x *ForLoop) (Value, flow, error) {
	subject, f, err := e.expr(c, x.Iterable)
	if err != nil || f != flowNormal {
		return subject, f, err
	}

	if subject.Kind != KindList {
		return Unit(), flowNormal, at(
			ErrForSubject.With(slog.String("kind", subject.Kind.String())), x.Iterable)
	}

	for n, item := range subject.List {
		e.logger.TraceContext(e.ctx, "loop iteration",
			slog.String("loop", "for"), slog.Int("n", n))

		c.Push()

		if err := c.Define(x.Name, item); err != nil {
			c.Pop()

			return Unit(), flowNormal, at(err, x)
		}

		v, f, stop, err := e.iterate(c, x.Body)

		c.Pop()

		if stop || err != nil {
			return v, f, err
		}
	}

	return Unit(), flowNormal, nil
}

func (e *evaluator) call(c *Context, x *CallExpr) (Value, flow, error) {
	if err := e.ctx.Err(); err != nil {
		return Unit(), flowNormal, at(ErrCanceled.Wrap(err), x)
	}

	var name string
	if re, ok := x.Callee.(*RefExpr); ok {
		if vr, ok := re.Ref.(*VariableRef); ok {
			name = vr.Name
		}
	}

	builtin := name == builtinPrint && !c.Has(name)

	var callee Value

	if !builtin {
		if name != "" && !c.Has(name) {
			return Unit(), flowNormal, at(
				ErrUndefinedFunction.With(slog.String("name", name)), x.Callee)
		}

		v, f, err := e.expr(c, x.Callee)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		if v.Kind != KindFunction {
			return Unit(), flowNormal, at(
				ErrNotFunction.With(slog.String("kind", v.Kind.String())), x.Callee)
		}

		callee = v
	}

	args := make([]Value, 0, len(x.Args))

	for _, arg := range x.Args {
		v, f, err := e.expr(c, arg)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		args = append(args, v)
	}

	if builtin {
		return Unit(), flowNormal, at(e.print(args), x)
	}

	return e.apply(c, name, callee.Func, args, x)
}

// apply invokes fn in a fresh call context whose base layer binds the
// parameters. Only a rebinding of the callee's own name is reconciled into
// the caller afterward.
func (e *evaluator) apply(
	c *Context,
	name string,
	fn *Function,
	args []Value,
	x *CallExpr,
) (Value, flow, error) {
	if len(args) != len(fn.Params) {
		return Unit(), flowNormal, at(ErrArityMismatch.With(
			slog.String("name", name),
			slog.Int("want", len(fn.Params)),
			slog.Int("got", len(args)),
		), x)
	}

	if e.maxCalls > 0 && e.calls >= e.maxCalls {
		return Unit(), flowNormal, at(
			ErrCallDepthExceeded.With(slog.Int("depth", e.calls)), x)
	}

	params := NewScope()

	for i, p := range fn.Params {
		if err := params.Define(p, args[i]); err != nil {
			return Unit(), flowNormal, at(err, x)
		}
	}

	e.logger.TraceContext(e.ctx, "call",
		slog.String("name", name),
		slog.Int("args", len(args)),
		slog.Int("depth", e.calls+1))

	e.calls++
	defer func() { e.calls-- }()

	inner := newCallContext(c, params)

	v, f, err := e.expr(inner, fn.Body)
	if err != nil {
		return Unit(), flowNormal, err
	}

	switch f {
	case flowBreak, flowContinue:
		return Unit(), flowNormal, at(
			ErrStrayControl.With(slog.String("signal", f.String())), x)
	}

	if name != "" {
		inner.reconcile(name)
	}

	return v, flowNormal, nil
}

func (e *evaluator) print(args []Value) error {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}

	if _, err := io.WriteString(e.out, strings.Join(parts, " ")+"\n"); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}

// peek reads the value a reference designates without copying it.
func (e *evaluator) peek(c *Context, ref Reference) (Value, flow, error) {
	switch r := ref.(type) {
	case *VariableRef:
		slot, ok := c.lookup(r.Name)
		if !ok {
			return Unit(), flowNormal, at(
				ErrUndefinedVariable.With(slog.String("name", r.Name)), r)
		}

		return *slot, flowNormal, nil

	case *IndexRef:
		list, f, err := e.container(c, r.Container)
		if err != nil || f != flowNormal {
			return list, f, err
		}

		i, v, f, err := e.index(c, list, r)
		if err != nil || f != flowNormal {
			return v, f, err
		}

		return list.List[i], flowNormal, nil

	case *FieldRef:
		obj, f, err := e.container(c, r.Container)
		if err != nil || f != flowNormal {
			return obj, f, err
		}

		slot, err := field(obj, r)
		if err != nil {
			return Unit(), flowNormal, err
		}

		return *slot, flowNormal, nil

	default:
		return Unit(), flowNormal, ErrNotReference
	}
}

// container evaluates the container of an index or field reference,
// avoiding a deep copy when it is itself a reference.
func (e *evaluator) container(c *Context, expr Expression) (Value, flow, error) {
	if re, ok := expr.(*RefExpr); ok {
		return e.peek(c, re.Ref)
	}

	return e.expr(c, expr)
}

// index evaluates the index of r and checks it against list.
func (e *evaluator) index(c *Context, list Value, r *IndexRef) (int, Value, flow, error) {
	if list.Kind != KindList {
		return 0, Unit(), flowNormal, at(
			ErrNotList.With(slog.String("kind", list.Kind.String())), r.Container)
	}

	iv, f, err := e.expr(c, r.Index)
	if err != nil || f != flowNormal {
		return 0, iv, f, err
	}

	i, err := listIndex(list, iv, r)

	return i, Unit(), flowNormal, err
}

// listIndex checks that iv is a valid index into list.
func listIndex(list, iv Value, r *IndexRef) (int, error) {
	if list.Kind != KindList {
		return 0, at(ErrNotList.With(slog.String("kind", list.Kind.String())), r.Container)
	}

	if iv.Kind != KindNumber {
		return 0, at(ErrInvalidIndex.With(slog.String("kind", iv.Kind.String())), r.Index)
	}

	i, ok := iv.integral(iv.Number)
	if !ok {
		return 0, at(ErrInvalidIndex.With(slog.String("index", formatNumber(iv.Number))), r.Index)
	}

	if i >= len(list.List) {
		return 0, at(ErrIndexOutOfBounds.With(
			slog.Int("index", i),
			slog.Int("length", len(list.List)),
		), r.Index)
	}

	return i, nil
}

func field(obj Value, r *FieldRef) (*Value, error) {
	if obj.Kind != KindObject {
		return nil, at(ErrNotObject.With(
			slog.String("kind", obj.Kind.String()),
			slog.String("field", r.Field),
		), r)
	}

	slot, ok := obj.Object[r.Field]
	if !ok {
		return nil, at(ErrMissingField.With(slog.String("field", r.Field)), r)
	}

	return slot, nil
}

// slot resolves a reference to a writable location.
func (e *evaluator) slot(c *Context, ref Reference) (*Value, error) {
	switch r := ref.(type) {
	case *VariableRef:
		slot, err := c.Slot(r.Name)

		return slot, at(err, r)

	case *IndexRef:
		// Index first: evaluating it may rebind the container.
		iv, f, err := e.expr(c, r.Index)
		if err != nil {
			return nil, err
		}

		if f != flowNormal {
			return nil, at(ErrStrayControl.With(slog.String("signal", f.String())), r)
		}

		list, err := e.containerSlot(c, r.Container)
		if err != nil {
			return nil, err
		}

		i, err := listIndex(*list, iv, r)
		if err != nil {
			return nil, err
		}

		return &list.List[i], nil

	case *FieldRef:
		obj, err := e.containerSlot(c, r.Container)
		if err != nil {
			return nil, err
		}

		return field(*obj, r)

	default:
		return nil, ErrNotReference
	}
}

func (e *evaluator) containerSlot(c *Context, expr Expression) (*Value, error) {
	re, ok := expr.(*RefExpr)
	if !ok {
		return nil, at(ErrNotReference, expr)
	}

	return e.slot(c, re.Ref)
}
