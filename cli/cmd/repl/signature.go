package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/ardnew/slang/lang"
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // callee path, e.g. "math.add"
	argIndex int    // 0-based index of the argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed "name(" before the cursor
// and counts the top-level commas between it and the cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open := -1
	depth := 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')', ']', '}':
			depth++

		case '(', '[', '{':
			if depth == 0 {
				if r != '(' {
					return functionCall{}
				}

				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++

		case ')', ']', '}':
			depth--

		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// signature returns the parameter names of the function at path. ok is false
// if path does not name a function.
func signature(in *lang.Interpreter, path string) (params []string, ok bool) {
	if v, found := resolve(in, path); found {
		if v.Kind != lang.KindFunction {
			return nil, false
		}

		return v.Func.Params, true
	}

	if path == builtinPrint {
		return []string{"...values"}, true
	}

	return nil, false
}

// renderSignatureHint renders "name(a, b)" with the parameter at current
// emphasized. A variadic parameter ("...name") stays emphasized for every
// argument from its position on.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current || (strings.HasPrefix(p, "...") && current >= i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
