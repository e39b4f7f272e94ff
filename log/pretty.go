package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's output, so color is only emitted when that
// output is a color-capable terminal.
type palette struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style
	levels                                  map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)

	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:  color("8"),
		str:  color("6"),
		num:  color("3"),
		yes:  color("2"),
		no:   color("1"),
		dur:  color("5"),
		when: color("4"),
		null: color("8"),
		levels: map[Level]lipgloss.Style{
			LevelTrace: color("8"),
			LevelDebug: color("4"),
			LevelInfo:  color("2"),
			LevelWarn:  color("3"),
			LevelError: color("1").Bold(true),
		},
	}
}

// level returns the style of the nearest defined level at or below level.
func (p *palette) level(level slog.Level) lipgloss.Style {
	best := LevelTrace

	for _, l := range allLevels {
		if slog.Level(l) <= level {
			best = l
		}
	}

	return p.levels[best]
}

// scalar renders a non-group value.
func (p *palette) scalar(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.when.Render(v.Time().Format(time.RFC3339))

	default:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		return p.str.Render(fmt.Sprint(v.Any()))
	}
}

// prettyBase holds the state shared by both pretty handlers.
type prettyBase struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    *palette
	attrs  []slog.Attr
	groups []string
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions) prettyBase {
	return prettyBase{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
	}
}

func (b prettyBase) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if b.opts.Level != nil {
		threshold = b.opts.Level.Level()
	}

	return level >= threshold
}

// header returns the built-in attributes of r, after ReplaceAttr, ending
// with the message. The level is styled by each handler.
func (b prettyBase) header(r slog.Record) []slog.Attr {
	var out []slog.Attr

	if !r.Time.IsZero() {
		out = append(out, b.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	if b.opts.AddSource {
		if src := r.Source(); src != nil {
			out = append(out, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	return append(out, slog.String(slog.MessageKey, r.Message))
}

func (b prettyBase) replace(a slog.Attr) slog.Attr {
	if b.opts.ReplaceAttr == nil {
		return a
	}

	return b.opts.ReplaceAttr(nil, a)
}

// body returns the handler's stored attributes followed by those of r, with
// group names applied as dotted key prefixes.
func (b prettyBase) body(r slog.Record) []slog.Attr {
	out := append([]slog.Attr(nil), b.attrs...)

	prefix := strings.Join(b.groups, ".")

	r.Attrs(func(a slog.Attr) bool {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		out = append(out, a)

		return true
	})

	return out
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	prefix := strings.Join(b.groups, ".")

	stored := append(b.attrs[:len(b.attrs):len(b.attrs)], attrs...)
	if prefix != "" {
		for i := len(b.attrs); i < len(stored); i++ {
			stored[i].Key = prefix + "." + stored[i].Key
		}
	}

	b.attrs = stored

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		b.groups = append(b.groups[:len(b.groups):len(b.groups)], name)
	}

	return b
}

// prettyTextHandler writes one styled key=value line per record.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	head := h.header(r)
	last := len(head) - 1

	for _, a := range head[:last] {
		if a.Key != "" {
			h.writeAttr(buf, a)
		}
	}

	h.writePair(buf, slog.LevelKey, h.pal.level(r.Level).Render(levelName(r.Level)))
	h.writeAttr(buf, head[last])

	for _, a := range h.body(r) {
		h.writeAttr(buf, a)
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

func (h *prettyTextHandler) writePair(buf *bytes.Buffer, key, rendered string) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(h.pal.key.Render(key))
	buf.WriteByte('=')
	buf.WriteString(rendered)
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		for _, g := range v.Group() {
			if a.Key != "" {
				g.Key = a.Key + "." + g.Key
			}

			h.writeAttr(buf, g)
		}

		return
	}

	h.writePair(buf, a.Key, h.pal.scalar(v))
}

// prettyJSONHandler writes each record as an indented, styled JSON-like
// object.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("{")

	first := true

	field := func(depth int, key, rendered string) {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n" + strings.Repeat("  ", depth))
		buf.WriteString(h.pal.key.Render(strconv.Quote(key)))
		buf.WriteString(": ")
		buf.WriteString(rendered)
	}

	var attr func(depth int, a slog.Attr)

	attr = func(depth int, a slog.Attr) {
		v := a.Value.Resolve()
		if v.Kind() != slog.KindGroup {
			field(depth, a.Key, h.pal.scalar(v))

			return
		}

		field(depth, a.Key, "{")

		first = true

		for _, g := range v.Group() {
			attr(depth+1, g)
		}

		buf.WriteString("\n" + strings.Repeat("  ", depth) + "}")

		first = false
	}

	head := h.header(r)
	last := len(head) - 1

	for _, a := range head[:last] {
		if a.Key != "" {
			attr(1, a)
		}
	}

	field(1, slog.LevelKey, h.pal.level(r.Level).Render(levelName(r.Level)))
	attr(1, head[last])

	for _, a := range h.body(r) {
		attr(1, a)
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
