package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
)

func TestHistory_AddAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("missing history file should load cleanly: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"let x = 1", modeEval},
		{"list", modeCtrl},
		{"  x + 1  ", modeEval},
		{"", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"let x = 1", modeEval},
		{"list", modeCtrl},
		{"x + 1", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded entries = %v, want %v", got, want)
	}
}

func TestHistory_MovesDuplicateToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:b\nE:a\n" {
		t.Errorf("unexpected file content %q", got)
	}

	// The same text in another mode is a distinct entry.
	if err := h.Add("a", modeCtrl); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", h.Len())
	}
}

func TestHistory_Bounds(t *testing.T) {
	h := NewHistory("")

	for i := range maxHistory + 5 {
		if err := h.Add(strconv.Itoa(i), modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != maxHistory {
		t.Errorf("expected %d entries, got %d", maxHistory, h.Len())
	}

	if _, err := h.Entry(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	if _, err := h.Entry(h.Len()); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:let x = 1", HistoryEntry{"let x = 1", modeEval}},
		{"C:reset", HistoryEntry{"reset", modeCtrl}},
		{"1 + 2", HistoryEntry{"1 + 2", modeEval}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			if got := decodeEntry(tt.line); got != tt.want {
				t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
