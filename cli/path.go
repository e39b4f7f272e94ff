package cli

import (
	"os"

	"github.com/ardnew/slang/pkg"
)

// Configuration file names in [pkg.ConfigDir].
const (
	configYAML = "config.yaml"
	configJSON = "config.json"
)

const defaultDirMode os.FileMode = 0o700

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
