package cmd

import (
	"log/slog"
	"strings"
)

// Sentinel errors returned by the commands.
var (
	ErrOpenSource  = NewError("cannot open source")
	ErrIsDirectory = NewError("source is a directory")
	ErrNoSource    = NewError("no source given")
	ErrSetSyntax   = NewError("expected name=expression")
	ErrSetName     = NewError("not a valid identifier")
	ErrSetValue    = NewError("cannot evaluate expression")
	ErrSetType     = NewError("unsupported value type")
	ErrWriteConfig = NewError("cannot write configuration")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrYAMLMarshal = NewError("YAML marshal error")
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error returns "msg: cause", or whichever of the two is set.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// errors derived from a sentinel with Wrap or With still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// WithSource attaches the name of the offending source.
func (e *Error) WithSource(name string) *Error {
	return e.With(slog.String("source", name))
}
