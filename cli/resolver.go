package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolveYAML is a [kong.ConfigurationLoader] for YAML configuration files,
// such as the one written by the init command.
//
// Keys name flags without their leading dashes. Nested mappings are joined
// with "-", and underscores may stand in for hyphens, so the following are
// equivalent:
//
//	log-level: debug
//
//	log_level: debug
//
//	log:
//	  level: debug
//
// Command-line flags override configuration values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, err
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over flattened configuration keys.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := value.(map[string]any); ok {
			c.flatten(name, sub)

			continue
		}

		c[name] = scalar(value)
	}
}

// scalar converts numbers to strings, which kong's mappers parse into the
// flag's own type.
func scalar(v any) any {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)

	case int64:
		return strconv.FormatInt(x, 10)

	case uint64:
		return strconv.FormatUint(x, 10)

	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)

	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = scalar(item)
		}

		return out
	}

	return v
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}
