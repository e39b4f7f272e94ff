// Package profile starts optional runtime profiling for slang.
//
// Profiling is compiled in only with the "pprof" build tag ([Tag]), which
// links [github.com/pkg/profile] and registers the [net/http/pprof]
// handlers. Without the tag, [Modes] is empty and [Profiler.Start] returns a
// no-op.
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath("/tmp/slang"))
//	defer p.Start().Stop()
//
// Each mode writes one file named after it (cpu.pprof, mem.pprof, and so on)
// into the profiler's path. Inspect it with:
//
//	go tool pprof -http=: /tmp/slang/cpu.pprof
package profile
