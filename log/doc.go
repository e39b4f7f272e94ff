// Package log provides the structured logger used throughout slang, built
// on [log/slog].
//
// A [Logger] is a value. Its zero value discards all output, so the
// interpreter can carry one unconditionally and only pay for logging when a
// caller configures it with [Make].
//
// # Levels
//
// In addition to the slog levels, [LevelTrace] sits below [LevelDebug]. The
// interpreter reports per-node events at this level: parse cache lookups,
// function calls and loop iterations.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"))
//
// [Logger.Wrap] derives a logger with some options overridden, and
// [Logger.With] derives one that adds attributes to every record.
//
// # Pretty Output
//
// With [WithPretty] enabled, records are styled with lipgloss. Colors are
// chosen for the logger's own output, so a logger writing to a file or a
// pipe emits plain text.
//
// # Default Logger
//
// The package-level functions such as [Info] and [Error] write to a default
// logger on standard error, which [Config] reconfigures.
package log
