package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/slang/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "reset", "clear", "quit"}

// builtinPrint is the name of the only built-in function.
const builtinPrint = "print"

// isIdentRune reports whether r may appear in an identifier.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the identifier under the cursor and its byte offsets.
// The word is empty when the cursor follows a non-identifier character.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the field-access chain leading to the word at
// wordStart. For "x + cfg.http.po" with the word "po" it returns "cfg.http".
// Top-level words have an empty parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && !isIdentRune(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// resolve walks a dotted path through the interpreter's top-level bindings
// and object fields.
func resolve(in *lang.Interpreter, path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, err := in.Get(segments[0])
	if err != nil {
		return lang.Value{}, false
	}

	for _, seg := range segments[1:] {
		if v.Kind != lang.KindObject {
			return lang.Value{}, false
		}

		f, ok := v.Object[seg]
		if !ok {
			return lang.Value{}, false
		}

		v = *f
	}

	return v, true
}

// candidates returns the completion candidates for words under parent.
func candidates(in *lang.Interpreter, parent string) []string {
	if parent == "" {
		names := slices.Concat(in.Names(), lang.Keywords, []string{builtinPrint})
		slices.Sort(names)

		return slices.Compact(names)
	}

	v, ok := resolve(in, parent)
	if !ok || v.Kind != lang.KindObject {
		return nil
	}

	fields := make([]string, 0, len(v.Object))
	for name := range v.Object {
		fields = append(fields, name)
	}

	slices.Sort(fields)

	return fields
}

// isFunction reports whether the completed path names a callable value.
func isFunction(in *lang.Interpreter, path string) bool {
	if v, ok := resolve(in, path); ok {
		return v.Kind == lang.KindFunction
	}

	return path == builtinPrint
}

// computeMatches ranks the candidates for the word at the cursor. Nothing is
// offered for an empty top-level word; after a dot every field is offered.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var cands []string

	if m.mode == modeCtrl {
		if word == "" {
			return nil, wordStart, wordEnd
		}

		cands = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		cands = candidates(m.interp, parent)

		if word == "" {
			if parent == "" || len(cands) == 0 {
				return nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(cands))
			for i, c := range cands {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	return fuzzy.Find(word, cands), wordStart, wordEnd
}

// renderCandidateBar renders the matches on one line, truncated with an
// ellipsis to fit width. The selected candidate is highlighted while tabbing.
func (m model) renderCandidateBar() string {
	if len(m.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := m.width - lipgloss.Width(ellipsis)

	parent := ""
	if m.mode == modeEval {
		parent = parentPath(m.input.Value(), m.wordStart)
	}

	var b strings.Builder

	used := 0

	for i, match := range m.matches {
		path := match.Str
		if parent != "" {
			path = parent + "." + match.Str
		}

		rendered := renderCandidate(match, m.tabActive && i == m.suggIdx,
			m.mode == modeEval && isFunction(m.interp, path))

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w > room && i < len(m.matches)-1 {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// emphasized. Functions are shown with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// preview returns a one-line summary of a value for the list command.
func preview(v lang.Value) string {
	const width = 40

	src := v.Source()
	if utf8.RuneCountInString(src) > width {
		src = string([]rune(src)[:width-3]) + "..."
	}

	return v.Kind.String() + " " + src
}
