// Package cli parses sqlast command-line flags.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/electwix/sqlast/internal/config"
)

// Options holds the parsed command line. Zero values mean "use the config".
type Options struct {
	ConfigPath string
	// ConfigSet reports whether -config was given explicitly.
	ConfigSet bool
	Format    config.Format
	Strict    bool
	Verbose   bool
	LogJSON   bool
	SQLiteDSN string
	// Out, when set, receives the output instead of stdout.
	Out   string
	Files []string
}

// Parse parses args (without the program name).
func Parse(args []string) (Options, error) {
	opts := Options{ConfigPath: config.DefaultPath}

	fs := flag.NewFlagSet("sqlast", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var format string
	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&format, "format", "", "Output format: json, yaml or sql (default from config, else json)")
	fs.BoolVar(&opts.Strict, "strict", false, "Treat warnings and unknown config keys as errors")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable debug logging")
	fs.BoolVar(&opts.LogJSON, "log-json", false, "Write logs as JSON")
	fs.StringVar(&opts.SQLiteDSN, "sqlite", "", "Replay parsed statements into this SQLite database")
	fs.StringVar(&opts.Out, "out", "", "Write output to this file instead of stdout")
	fs.StringVar(&opts.Out, "o", "", "Write output to this file instead of stdout")

	if err := fs.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage(fs))
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || f.Name == "c" {
			opts.ConfigSet = true
		}
	})
	if format != "" {
		f, err := config.ParseFormat(format)
		if err != nil {
			return Options{}, fmt.Errorf("-format: %w\n\n%s", err, Usage(fs))
		}
		opts.Format = f
	}

	opts.Files = fs.Args()
	return opts, nil
}

// IsHelp reports whether err came from -h or -help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// Usage renders the flag defaults of fs.
func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s: %s [flags] [files...]\n", fs.Name(), fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
