package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/slang/lang"
	"github.com/ardnew/slang/log"
)

// binding is a global bound from the command line before a program runs.
type binding struct {
	name  string
	value lang.Value
}

// evalBindings evaluates each "name=expression" definition with expr-lang.
//
// Definitions are evaluated in order, and each expression may refer to the
// names bound before it.
func evalBindings(ctx context.Context, defs []string) ([]binding, error) {
	env := make(map[string]any, len(defs))
	out := make([]binding, 0, len(defs))

	for _, def := range defs {
		name, src, ok := strings.Cut(def, "=")
		name, src = strings.TrimSpace(name), strings.TrimSpace(src)

		if !ok || name == "" || src == "" {
			return nil, ErrSetSyntax.With(slog.String("set", def))
		}

		if !isIdentifier(name) {
			return nil, ErrSetName.With(slog.String("name", name))
		}

		result, err := expr.Eval(src, env)
		if err != nil {
			return nil, ErrSetValue.Wrap(err).With(slog.String("name", name))
		}

		value, verr := toValue(result)
		if verr != nil {
			return nil, verr.With(slog.String("name", name))
		}

		log.TraceContext(ctx, "set global",
			slog.String("name", name),
			slog.String("value", value.Source()))

		env[name] = result
		out = append(out, binding{name: name, value: value})
	}

	return out, nil
}

// define binds every binding in the interpreter's top-level context.
func define(in *lang.Interpreter, bindings []binding) error {
	for _, b := range bindings {
		if err := in.Define(b.name, b.value); err != nil {
			return err
		}
	}

	return nil
}

func isIdentifier(s string) bool {
	toks, err := lang.Tokenize(s)

	return err == nil && len(toks) == 1 && toks[0].Kind == lang.TokenIdentifier
}

// toValue converts a result produced by expr-lang to a slang value.
func toValue(v any) (lang.Value, *Error) {
	switch x := v.(type) {
	case nil:
		return lang.Unit(), nil

	case bool:
		return lang.Bool(x), nil

	case string:
		return lang.String(x), nil

	case float64:
		return lang.Number(x), nil

	case int:
		return lang.Number(float64(x)), nil

	case []any:
		items := make([]lang.Value, len(x))
		for i, item := range x {
			var err *Error
			if items[i], err = toValue(item); err != nil {
				return lang.Unit(), err
			}
		}

		return lang.List(items...), nil

	case map[string]any:
		fields := make(map[string]lang.Value, len(x))
		for k, item := range x {
			f, err := toValue(item)
			if err != nil {
				return lang.Unit(), err
			}

			fields[k] = f
		}

		return lang.Object(fields), nil
	}

	return reflectValue(reflect.ValueOf(v))
}

// reflectValue handles the remaining numeric, slice and map types.
func reflectValue(rv reflect.Value) (lang.Value, *Error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lang.Number(float64(rv.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lang.Number(float64(rv.Uint())), nil

	case reflect.Float32, reflect.Float64:
		return lang.Number(rv.Float()), nil

	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}

		return toValue(items)

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		fields := make(map[string]any, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			fields[it.Key().String()] = it.Value().Interface()
		}

		return toValue(fields)
	}

	return lang.Unit(), ErrSetType.With(slog.String("type", fmt.Sprintf("%T", rv.Interface())))
}
