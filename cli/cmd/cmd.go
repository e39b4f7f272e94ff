package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the source name that selects standard input.
const stdinSource = "-"

// Source is one program input.
type Source struct {
	io.Reader

	// Name is the path the source was opened from, or "-" for stdin.
	Name string
}

// Close closes the underlying file, unless it is stdin.
func (s Source) Close() error {
	if c, ok := s.Reader.(io.Closer); ok && s.Name != stdinSource {
		return c.Close()
	}

	return nil
}

// fileKey uniquely identifies a file by its device and inode numbers, so that
// a program named twice (through a symlink, a relative path, or
// /dev/stdin) is only executed once.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each named source in order.
//
// Duplicates are skipped by device and inode. Every occurrence of "-" (and
// any path naming the same file as stdin) collapses to a single stdin source
// placed last. A path that cannot be opened is an error.
func openSources(paths []string, stdin *os.File) (srcs []Source, err error) {
	defer func() {
		if err != nil {
			closeSources(srcs)
			srcs = nil
		}
	}()

	seen := make(map[fileKey]struct{})

	var stdinKey *fileKey

	if info, err := stdin.Stat(); err == nil {
		if key, ok := makeFileKey(info); ok {
			stdinKey = &key
		}
	}

	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		file, key, err := openFile(path)
		if err != nil {
			return srcs, ErrOpenSource.Wrap(err).WithSource(path)
		}

		if stdinKey != nil && key == *stdinKey {
			file.Close()

			hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			file.Close()

			continue
		}

		seen[key] = struct{}{}
		srcs = append(srcs, Source{Reader: file, Name: path})
	}

	if hasStdin {
		srcs = append(srcs, Source{Reader: stdin, Name: stdinSource})
	}

	return srcs, nil
}

// openFile opens path after resolving it to an absolute, symlink-free form.
func openFile(path string) (*os.File, fileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fileKey{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, fileKey{}, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()

		return nil, fileKey{}, err
	}

	if info.IsDir() {
		file.Close()

		return nil, fileKey{}, ErrIsDirectory
	}

	key, ok := makeFileKey(info)
	if !ok {
		// No inode information: identify the file by its resolved path alone.
		key = fileKey{dev: ^uint64(0), ino: xxh3.HashString(resolved)}
	}

	return file, key, nil
}

func closeSources(srcs []Source) {
	for _, src := range srcs {
		_ = src.Close()
	}
}

func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
