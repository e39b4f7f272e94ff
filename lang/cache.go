package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed programs keyed by a hash of the source and the
// options that affect parsing. Programs are read-only, so a cached program
// may be shared by any number of evaluations.
var globalCache sync.Map

// entry tracks the one-time parse of a source.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// ParseReader parses input from an io.Reader and returns the program.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrInput.Wrap(err).With(slog.String("source", "reader"))
	}

	cfg := newConfig(opts...)

	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return parseCached(ctx, string(data), cfg)
}

// ParseString parses source and returns the program. Results are cached, so
// repeated parses of the same source return the same program.
func ParseString(ctx context.Context, s string, opts ...Option) (*Program, error) {
	return parseCached(ctx, s, newConfig(opts...))
}

func parseCached(ctx context.Context, source string, cfg config) (*Program, error) {
	sourceHash := xxh3.HashString(source)
	key := strconv.FormatUint(sourceHash, 36) + ":" + strconv.Itoa(cfg.maxDepth)

	value, cacheHit := globalCache.LoadOrStore(key, new(entry))

	ent, ok := value.(*entry)
	if !ok {
		return nil, ErrInput.With(slog.String("issue", "invalid cache entry type"))
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	ent.once.Do(func() {
		ent.prog, ent.err = parse(ctx, source, cfg)
	})

	return ent.prog, ent.err
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
