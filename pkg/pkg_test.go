package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("failed to read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("expected Version %q, got %q", want, Version)
	}

	if strings.ContainsAny(Version, " \n") {
		t.Errorf("expected trimmed Version, got %q", Version)
	}
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		exe  string
		want string
	}{
		{"/usr/local/bin/slang", "slang"},
		{`C:\bin\slang.exe`, "slang"},
		{"/tmp/__debug_bin3421", Name},
		{"/opt/.slang-dev.bin", "slang-dev"},
		{"/tmp/...", Name},
		{"slang-dev", "slang-dev"},
	}

	for _, tt := range tests {
		t.Run(tt.exe, func(t *testing.T) {
			t.Parallel()

			exe := tt.exe
			if filepath.Separator != '\\' {
				exe = strings.ReplaceAll(exe, `\`, "/")
			}

			if got := prefixOf(exe); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUserDir(t *testing.T) {
	dir := userDir(func() (string, error) { return "/xdg", nil }, ".config")
	if want := filepath.Join("/xdg", Prefix()); dir != want {
		t.Errorf("expected %q, got %q", want, dir)
	}

	if got := ConfigPath("config.yaml"); filepath.Base(got) != "config.yaml" ||
		filepath.Dir(got) != ConfigDir() {
		t.Errorf("unexpected config path %q", got)
	}

	if got := CachePath("history"); filepath.Dir(got) != CacheDir() {
		t.Errorf("unexpected cache path %q", got)
	}
}
