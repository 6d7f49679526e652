// Package config loads and validates the sqlast configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/electwix/sqlast/internal/check"
	"github.com/electwix/sqlast/internal/fileset"
)

// DefaultPath is the configuration file looked up when none is named.
const DefaultPath = "sqlast.toml"

// DefaultMaxInputBytes caps the size of a single input.
const DefaultMaxInputBytes = 1 << 20

// Format selects how parsed statements are written.
type Format string

const (
	// FormatJSON writes one JSON document per input.
	FormatJSON Format = "json"
	// FormatYAML writes one YAML document per input.
	FormatYAML Format = "yaml"
	// FormatSQL re-renders the statements as canonical SQL.
	FormatSQL Format = "sql"
)

var validFormats = map[Format]struct{}{
	FormatJSON: {},
	FormatYAML: {},
	FormatSQL:  {},
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validFormats[f]; !ok {
		return "", fmt.Errorf("unsupported format %q (want json, yaml or sql)", s)
	}
	return f, nil
}

// GrammarConfig captures the [grammar] table.
type GrammarConfig struct {
	ExtraKeywords []string `toml:"extra_keywords"`
}

// CheckConfig captures the [check] table. Unset keys keep their defaults.
type CheckConfig struct {
	InsertArity  *bool `toml:"insert_arity"`
	DefaultTypes *bool `toml:"default_types"`
}

// ReplayConfig captures the [replay] table.
type ReplayConfig struct {
	SQLite string `toml:"sqlite"`
}

// Config mirrors the sqlast TOML schema.
type Config struct {
	Format        Format        `toml:"format"`
	Strict        bool          `toml:"strict"`
	Workers       *int          `toml:"workers"`
	MaxInputBytes *int          `toml:"max_input_bytes"`
	Inputs        []string      `toml:"inputs"`
	Grammar       GrammarConfig `toml:"grammar"`
	Check         CheckConfig   `toml:"check"`
	Replay        ReplayConfig  `toml:"replay"`
}

// JobPlan is the fully-resolved configuration used by the pipeline.
type JobPlan struct {
	Format        Format
	Strict        bool
	Workers       int
	MaxInputBytes int
	// Inputs are the files matched by the inputs patterns, relative to the
	// directory holding the configuration file.
	Inputs        []string
	ExtraKeywords []string
	Check         check.Options
	// SQLiteDSN, when set, replays the parsed statements into that database.
	SQLiteDSN string
}

// Default returns the plan used when no configuration file exists.
func Default() JobPlan {
	return JobPlan{
		Format:        FormatJSON,
		Workers:       runtime.GOMAXPROCS(0),
		MaxInputBytes: DefaultMaxInputBytes,
		Check:         check.DefaultOptions(),
	}
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	// Strict turns unknown keys into errors.
	Strict bool
	// Optional makes a missing file yield Default instead of an error.
	Optional bool
	Resolver *fileset.Resolver
}

// Result wraps a loaded job plan alongside any non-fatal warnings.
type Result struct {
	Plan     JobPlan
	Warnings []string
}

var knownTables = map[string][]string{
	"":        {"format", "strict", "workers", "max_input_bytes", "inputs", "grammar", "check", "replay"},
	"grammar": {"extra_keywords"},
	"check":   {"insert_arity", "default_types"},
	"replay":  {"sqlite"},
}

// Load reads, validates, and resolves a sqlast configuration file.
func Load(path string, opts LoadOptions) (Result, error) {
	res := Result{Plan: Default()}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if opts.Optional && errors.Is(err, fs.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	unknownKeys, err := collectUnknownKeys(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if len(unknownKeys) > 0 {
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknownKeys, ", "))
		if opts.Strict || cfg.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	plan := &res.Plan
	plan.Strict = cfg.Strict
	if cfg.Format != "" {
		if plan.Format, err = ParseFormat(string(cfg.Format)); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}
	if cfg.Workers != nil {
		if *cfg.Workers < 0 {
			return res, fmt.Errorf("%s: workers must not be negative", path)
		}
		if *cfg.Workers > 0 {
			plan.Workers = *cfg.Workers
		}
	}
	if cfg.MaxInputBytes != nil {
		if *cfg.MaxInputBytes < 0 {
			return res, fmt.Errorf("%s: max_input_bytes must not be negative", path)
		}
		plan.MaxInputBytes = *cfg.MaxInputBytes
	}
	if err := validateKeywords(cfg.Grammar.ExtraKeywords); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	plan.ExtraKeywords = cfg.Grammar.ExtraKeywords
	if cfg.Check.InsertArity != nil {
		plan.Check.InsertArity = *cfg.Check.InsertArity
	}
	if cfg.Check.DefaultTypes != nil {
		plan.Check.DefaultTypes = *cfg.Check.DefaultTypes
	}
	plan.SQLiteDSN = cfg.Replay.SQLite

	if len(cfg.Inputs) > 0 {
		var resolver fileset.Resolver
		if opts.Resolver != nil {
			resolver = *opts.Resolver
		} else if resolver, err = fileset.NewOSResolver(filepath.Dir(path)); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		if plan.Inputs, err = resolveInputs(resolver, cfg.Inputs); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	return res, nil
}

// collectUnknownKeys lists keys outside the schema, dotted by table and sorted.
func collectUnknownKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var unknown []string
	for key, value := range raw {
		if !slices.Contains(knownTables[""], key) {
			unknown = append(unknown, key)
			continue
		}
		known, isTable := knownTables[key]
		record, ok := value.(map[string]any)
		if !isTable || !ok {
			continue
		}
		for sub := range record {
			if !slices.Contains(known, sub) {
				unknown = append(unknown, key+"."+sub)
			}
		}
	}
	slices.Sort(unknown)
	return unknown, nil
}

func validateKeywords(words []string) error {
	for _, w := range words {
		if w == "" {
			return errors.New("grammar.extra_keywords: empty keyword")
		}
		for i := 0; i < len(w); i++ {
			c := w[i]
			if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
				return fmt.Errorf("grammar.extra_keywords: %q is not a bare word", w)
			}
		}
	}
	return nil
}

func resolveInputs(resolver fileset.Resolver, patterns []string) ([]string, error) {
	paths, err := resolver.Resolve(patterns)
	if err == nil {
		return paths, nil
	}
	var noMatchErr fileset.NoMatchError
	if errors.As(err, &noMatchErr) {
		return nil, fmt.Errorf("inputs patterns matched no files: %s", strings.Join(noMatchErr.Patterns, ", "))
	}
	var patternErr fileset.PatternError
	if errors.As(err, &patternErr) {
		return nil, fmt.Errorf("inputs: invalid glob pattern %q: %w", patternErr.Pattern, patternErr.Err)
	}
	return nil, fmt.Errorf("inputs: %w", err)
}
