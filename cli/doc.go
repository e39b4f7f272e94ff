// Package cli contains the command line interface for slang.
//
// # Usage
//
//	slang [flags] [run] [file ...]
//	slang fmt (native|json|yaml|ast) [file]
//	slang repl
//	slang init [--force]
//
// Running a program is the default command, so "slang prog.sl" runs
// prog.sl. A file named "-" (the default) reads the program from stdin.
//
// # Configuration
//
// Flag defaults are loaded from config.json and config.yaml in the user
// configuration directory (see [pkg.ConfigDir]). The init command writes
// the current global flag values to config.yaml. Flags given on the
// command line override both files.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o slang .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory in the user cache directory)
package cli
