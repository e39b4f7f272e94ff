package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func plain(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithPretty(false), WithTimeLayout("none")}, opts...)...)
}

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		log   func(Logger)
		want  bool
	}{
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"trace at debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"debug at info", LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{"info at info", LevelInfo, func(l Logger) { l.Info("m") }, true},
		{"warn at error", LevelError, func(l Logger) { l.Warn("m") }, false},
		{"error at error", LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			tt.log(plain(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("expected logged=%v, got output %q", tt.want, buf.String())
			}
		})
	}
}

func TestLogger_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithLevel(LevelTrace)).TraceContext(t.Context(), "call")

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE level name, got %q", buf.String())
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithFormat(FormatJSON)).Warn("parse failed", slog.Int("line", 3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if record["msg"] != "parse failed" || record["level"] != "WARN" {
		t.Errorf("unexpected record: %v", record)
	}

	if record["line"] != float64(3) {
		t.Errorf("expected line=3, got %v", record["line"])
	}

	if _, ok := record["time"]; ok {
		t.Errorf("expected no timestamp with layout none, got %v", record["time"])
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithCaller(true)).Warn("here")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller to name this file, got %q", buf.String())
	}
}

func TestLogger_PrettyText(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"), WithFormat(FormatText))
	logger.With(slog.String("component", "repl")).
		Warn("history", slog.Group("file", slog.Int("lines", 2)))

	out := strings.TrimSpace(buf.String())

	// A buffer has no color profile, so no escape codes are rendered.
	want := "level=WARN msg=history component=repl file.lines=2"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestLogger_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none"), WithFormat(FormatJSON)).
		Error("failed", slog.Bool("fatal", true))

	for _, want := range []string{`"level": ERROR`, `"msg": failed`, `"fatal": true`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := plain(&buf)
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != DefaultLevel {
		t.Errorf("expected Wrap to leave the receiver unchanged, got %v", base.Level())
	}

	wrapped.Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected wrapped logger to log at debug, got %q", buf.String())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Error("discarded")
	logger.TraceContext(t.Context(), "discarded")

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("expected zero logger to be disabled")
	}

	if logger.With(slog.String("k", "v")).Logger != nil {
		t.Error("expected With on zero logger to stay zero")
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf safeBuffer

	logger := Make(&buf, WithPretty(false), WithLevel(LevelInfo))

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("tick")
			_ = logger.Wrap(WithLevel(LevelDebug)).Level()
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "tick"); n != 16 {
		t.Errorf("expected 16 records, got %d", n)
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func BenchmarkLogger_Trace_Disabled(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithLevel(LevelInfo))

	for b.Loop() {
		logger.Trace("call", slog.String("name", "fib"))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false))

	for b.Loop() {
		buf.Reset()
		logger.Info("call", slog.String("name", "fib"))
	}
}
