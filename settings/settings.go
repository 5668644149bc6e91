// Package settings fills command flags from an optional YAML file, so a
// long-running service doesn't need its secrets on the command line.
//
//	url: https://example.org/report
//	cookie: "..."
//	iftttKey: "..."
//	maxJitter: 300
//
// Keys are flag names. A flag given on the command line, or whose
// environment variable is set, wins over the file.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var ErrUnknownKey = errors.New("unknown settings key")

type Settings map[string]string

// Load reads path. An empty path yields empty Settings.
func Load(path string) (Settings, error) {
	if path == "" {
		return Settings{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Settings, error) {
	var raw map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing settings: %w", err)
	}

	s := make(Settings, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			s[k] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("settings key %q: nested values aren't supported", k)
		default:
			s[k] = fmt.Sprint(v)
		}
	}
	return s, nil
}

// Apply sets every flag in fs that has a value in s, unless the flag was
// given explicitly or envOf reports its environment variable as set. Keys
// that match no flag in any of known are an error.
func (s Settings) Apply(fs *pflag.FlagSet, envOf func(flag string) string, known ...*pflag.FlagSet) error {
	for k := range s {
		if fs.Lookup(k) != nil {
			continue
		}
		found := false
		for _, other := range known {
			if other.Lookup(k) != nil {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		v, ok := s[f.Name]
		if !ok || f.Changed || err != nil {
			return
		}
		if env := envOf(f.Name); env != "" && os.Getenv(env) != "" {
			return
		}
		if setErr := f.Value.Set(v); setErr != nil {
			err = fmt.Errorf("settings key %q: %w", f.Name, setErr)
		}
	})
	return err
}
