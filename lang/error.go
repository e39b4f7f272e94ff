package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Error classes. Every error produced by this package matches exactly one of
// these with errors.Is.
var (
	ErrSyntax  = NewError("syntax error")
	ErrRuntime = NewError("runtime error")
	ErrInput   = NewError("failed to read input")
)

// Syntax error kinds.
var (
	ErrUnmatchedDelimiter = ErrSyntax.Kind("no matching closing delimiter")
	ErrStrayDelimiter     = ErrSyntax.Kind("unexpected closing delimiter")
	ErrInvalidCharacter   = ErrSyntax.Kind("invalid character")
	ErrUnterminatedString = ErrSyntax.Kind("unterminated string")
	ErrInvalidNumber      = ErrSyntax.Kind("invalid number")
	ErrIdentifierList     = ErrSyntax.Kind("invalid identifier list")
	ErrInvalidDefinition  = ErrSyntax.Kind("invalid variable definition")
	ErrInvalidAssignment  = ErrSyntax.Kind("can only assign to a reference")
	ErrInvalidContinue    = ErrSyntax.Kind("invalid statement after continue")
	ErrInvalidClosure     = ErrSyntax.Kind("invalid closure expression")
	ErrInvalidFor         = ErrSyntax.Kind("invalid for loop")
	ErrInvalidWhile       = ErrSyntax.Kind("invalid while loop")
	ErrInvalidIf          = ErrSyntax.Kind("invalid if expression")
	ErrInvalidBody        = ErrSyntax.Kind("body must be a block")
	ErrEmptyBlock         = ErrSyntax.Kind("empty block")
	ErrEmptyExpression    = ErrSyntax.Kind("empty expression")
	ErrInvalidToken       = ErrSyntax.Kind("not a valid token expression")
	ErrInvalidUnary       = ErrSyntax.Kind("no such unary operator")
	ErrInvalidField       = ErrSyntax.Kind("invalid object field")
	ErrDuplicateField     = ErrSyntax.Kind("duplicate object field")
	ErrMissingSeparator   = ErrSyntax.Kind("not a valid expression, are you missing a semicolon?")
	ErrMaxDepthExceeded   = ErrSyntax.Kind("maximum nesting depth exceeded")
)

// Runtime error kinds.
var (
	ErrUndefinedVariable = ErrRuntime.Kind("variable is not defined")
	ErrAlreadyDefined    = ErrRuntime.Kind("variable is already defined")
	ErrIndexOutOfBounds  = ErrRuntime.Kind("index is out of bounds")
	ErrInvalidIndex      = ErrRuntime.Kind("index is not a non-negative integer")
	ErrNotList           = ErrRuntime.Kind("value is not a list")
	ErrNotObject         = ErrRuntime.Kind("value is not an object")
	ErrMissingField      = ErrRuntime.Kind("not a field of the object")
	ErrNotReference      = ErrRuntime.Kind("value is not a reference")
	ErrConditionType     = ErrRuntime.Kind("condition is not a boolean")
	ErrForSubject        = ErrRuntime.Kind("for-loop subject is not a list")
	ErrInvalidOperator   = ErrRuntime.Kind("invalid operator")
	ErrInvalidOperands   = ErrRuntime.Kind("invalid operand types")
	ErrDivisionByZero    = ErrRuntime.Kind("division by zero")
	ErrNotFunction       = ErrRuntime.Kind("value is not a function")
	ErrUndefinedFunction = ErrRuntime.Kind("function does not exist")
	ErrArityMismatch     = ErrRuntime.Kind("argument count mismatch")
	ErrStrayControl      = ErrRuntime.Kind("control flow outside of its construct")
	ErrCallDepthExceeded = ErrRuntime.Kind("maximum call depth exceeded")
	ErrCanceled          = ErrRuntime.Kind("evaluation canceled")
	ErrOutput            = ErrRuntime.Kind("failed to write output")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	class *Error      // Error class for kinds, nil for classes
	err   error       // Wrapped error (for errors.Unwrap)
	pos   *Position   // Source position, if known
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Kind derives an error kind belonging to the receiver's class.
func (e *Error) Kind(msg string) *Error {
	return &Error{msg: msg, class: e}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.class != nil {
		part = append(part, e.class.msg)
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")

	if e.pos != nil && e.pos.Line > 0 {
		s += " (line " + strconv.Itoa(e.pos.Line) +
			", column " + strconv.Itoa(e.pos.Column) + ")"
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the receiver's kind or class. Errors derived
// with With, Wrap or WithPosition still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.err != nil {
		return false
	}

	if e.class != nil && t == e.class {
		return true
	}

	return t.msg != "" && t.msg == e.msg && t.class == e.class
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.class != nil {
		attrs = append(attrs, slog.String("class", e.class.msg))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil && e.pos.Line > 0 {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := *e
	c.attrs = newAttrs

	return &c
}

// WithPosition attaches a source position. The first position attached wins,
// so an inner, more precise position is never overwritten.
func (e *Error) WithPosition(pos Position) *Error {
	if e.pos != nil {
		return e
	}

	c := *e
	c.pos = &pos

	return &c
}

// withNodePosition attaches the position of the first token in nodes.
func withNodePosition(err *Error, nodes []Node) *Error {
	if pos, ok := firstPosition(nodes); ok {
		return err.WithPosition(pos)
	}

	return err
}
