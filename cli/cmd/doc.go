// Package cmd implements the slang subcommands: run, fmt, repl, and init.
package cmd

var (
	// CacheIdentifier is the kong variable holding the path of the runtime
	// cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the YAML
	// configuration file written by init.
	ConfigIdentifier = "config"
)
