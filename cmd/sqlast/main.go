// Package main implements the sqlast CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/electwix/sqlast/internal/cli"
	"github.com/electwix/sqlast/internal/diagnostics"
	"github.com/electwix/sqlast/internal/fileset"
	"github.com/electwix/sqlast/internal/logging"
	"github.com/electwix/sqlast/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if cli.IsHelp(err) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		JSON:    opts.LogJSON,
		Writer:  stderr,
	})

	pipe := pipeline.Pipeline{Env: pipeline.Environment{
		FSResolver: fileset.NewOSResolver,
		Logger:     logging.NewSlogAdapter(logger),
		Stdin:      stdin,
		Stdout:     stdout,
		Writer:     pipeline.NewOSWriter(),
	}}
	summary, runErr := pipe.Run(ctx, pipeline.RunOptions{
		ConfigPath:    opts.ConfigPath,
		RequireConfig: opts.ConfigSet,
		Strict:        opts.Strict,
		Format:        opts.Format,
		SQLiteDSN:     opts.SQLiteDSN,
		Out:           opts.Out,
		Files:         opts.Files,
	})

	printDiagnostics(stderr, summary.Diagnostics, opts)

	if runErr != nil {
		var diagErr *pipeline.DiagnosticsError
		if !errors.As(runErr, &diagErr) || diagErr.Cause != nil {
			_, _ = fmt.Fprintln(stderr, runErr.Error())
		}
		var writeErr *pipeline.WriteError
		if errors.As(runErr, &writeErr) {
			return 2
		}
		return 1
	}
	return 0
}

// printDiagnostics writes diags sorted by location. With -log-json they are
// written as one JSON array so the stream stays machine readable.
func printDiagnostics(w io.Writer, diags []diagnostics.Diagnostic, opts cli.Options) {
	if len(diags) == 0 {
		return
	}
	collection := diagnostics.NewCollection()
	collection.Add(diags...)
	collection.SortByLocation()

	if opts.LogJSON {
		out, err := (&diagnostics.JSONFormatter{}).FormatCollection(collection)
		if err != nil {
			_, _ = fmt.Fprintln(w, err.Error())
			return
		}
		_, _ = fmt.Fprintln(w, out)
		return
	}

	formatter := diagnostics.NewFormatter()
	if opts.Verbose {
		formatter = diagnostics.NewVerboseFormatter()
	}
	_ = formatter.WriteAll(w, collection)
	formatter.PrintSummary(w, collection)
}
