package cli

import (
	"flag"
	"slices"
	"strings"
	"testing"

	"github.com/electwix/sqlast/internal/config"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	opts, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opts.ConfigPath != config.DefaultPath || opts.ConfigSet {
		t.Fatalf("config = %q (set %v), want default", opts.ConfigPath, opts.ConfigSet)
	}
	if opts.Format != "" || opts.Strict || opts.Verbose || opts.LogJSON || opts.SQLiteDSN != "" || opts.Out != "" {
		t.Fatalf("unexpected non-zero options: %+v", opts)
	}
	if len(opts.Files) != 0 {
		t.Fatalf("Files = %v, want empty", opts.Files)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	opts, err := Parse([]string{
		"-c", "project.toml",
		"-format", "YAML",
		"-strict",
		"-v",
		"-log-json",
		"-sqlite", "file:out.db",
		"-o", "ast.json",
		"a.sql", "b.sql",
	})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if opts.ConfigPath != "project.toml" || !opts.ConfigSet {
		t.Fatalf("config = %q (set %v)", opts.ConfigPath, opts.ConfigSet)
	}
	if opts.Format != config.FormatYAML {
		t.Fatalf("Format = %q, want yaml", opts.Format)
	}
	if !opts.Strict || !opts.Verbose || !opts.LogJSON {
		t.Fatalf("boolean flags not set: %+v", opts)
	}
	if opts.SQLiteDSN != "file:out.db" {
		t.Fatalf("SQLiteDSN = %q", opts.SQLiteDSN)
	}
	if opts.Out != "ast.json" {
		t.Fatalf("Out = %q", opts.Out)
	}
	if !slices.Equal(opts.Files, []string{"a.sql", "b.sql"}) {
		t.Fatalf("Files = %v", opts.Files)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
		help bool
	}{
		{name: "unknown flag", args: []string{"--unknown"}, want: "Usage of sqlast"},
		{name: "bad format", args: []string{"-format", "xml"}, want: `unsupported format "xml"`},
		{name: "help", args: []string{"-h"}, want: "-sqlite", help: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.args)
			if err == nil {
				t.Fatalf("Parse(%v) succeeded", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want it to contain %q", err, tt.want)
			}
			if IsHelp(err) != tt.help {
				t.Fatalf("IsHelp = %v, want %v", IsHelp(err), tt.help)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("sqlast", flag.ContinueOnError)
	fs.String("format", "", "output format")

	usage := Usage(fs)
	if !strings.Contains(usage, "Usage of sqlast:") || !strings.Contains(usage, "-format") {
		t.Fatalf("unexpected usage: %q", usage)
	}
	if Usage(nil) != "" {
		t.Fatalf("Usage(nil) should be empty")
	}
}
