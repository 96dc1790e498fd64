package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// QuitKey is reserved for leaving the program and can never be bound to a
// destination.
const QuitKey = 'q'

// DefaultPath is used when no config file is given on the command line.
const DefaultPath = "config.toml"

// Destination is the resolved meaning of a bound key: either skip the file
// (no move) or move it into Dir.
type Destination struct {
	Skip bool
	Dir  string
}

// file mirrors the TOML document:
//
//	dir = "./inbox"
//
//	[dests]
//	a = "./sorted/animals"
//	s = "skip"
type file struct {
	Dir   string            `toml:"dir"`
	Dests map[string]string `toml:"dests"`
}

// Config is the validated runtime configuration. Bindings maps a single key
// to its destination; the "skip" sentinel is resolved here so callers only
// ever see the two Destination variants.
type Config struct {
	Dir      string
	Bindings map[rune]Destination
}

// Load reads and validates the TOML config at path. All returned errors are
// fatal; nothing is partially applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return validate(&f)
}

func validate(f *file) (*Config, error) {
	if f.Dir == "" {
		return nil, errors.New(`config: "dir" is required`)
	}
	info, err := os.Stat(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("config: source directory %s: %w", f.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config: %s is not a directory", f.Dir)
	}
	if len(f.Dests) == 0 {
		return nil, errors.New(`config: at least one [dests] binding is required`)
	}

	bindings := make(map[rune]Destination, len(f.Dests))
	for key, dest := range f.Dests {
		if utf8.RuneCountInString(key) != 1 {
			return nil, fmt.Errorf("config: binding %q must be a single character", key)
		}
		r, _ := utf8.DecodeRuneInString(key)
		if r == QuitKey {
			return nil, fmt.Errorf("config: key %q is reserved for quitting", string(QuitKey))
		}
		if dest == "" {
			return nil, fmt.Errorf("config: binding %q has an empty destination", key)
		}
		if strings.EqualFold(dest, "skip") {
			bindings[r] = Destination{Skip: true}
		} else {
			bindings[r] = Destination{Dir: dest}
		}
	}
	return &Config{Dir: f.Dir, Bindings: bindings}, nil
}
