// Package pipeline runs sqlast end to end: it loads the configuration, parses
// every input concurrently, checks the statements, writes the requested output
// and optionally replays the result into SQLite.
package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/electwix/sqlast/internal/ast"
	"github.com/electwix/sqlast/internal/bind"
	"github.com/electwix/sqlast/internal/cache"
	"github.com/electwix/sqlast/internal/check"
	"github.com/electwix/sqlast/internal/config"
	"github.com/electwix/sqlast/internal/diagnostics"
	"github.com/electwix/sqlast/internal/fileset"
	"github.com/electwix/sqlast/internal/grammar"
	"github.com/electwix/sqlast/internal/logging"

	_ "modernc.org/sqlite" // registers the "sqlite" driver used by OpenSQLite
)

// Stdin is the input name that reads from Environment.Stdin.
const Stdin = "-"

const (
	stdinLabel  = "<stdin>"
	stdoutLabel = "<stdout>"
)

// Environment captures external dependencies used by the pipeline.
type Environment struct {
	FSResolver func(string) (fileset.Resolver, error)
	Logger     logging.Logger
	Stdin      io.Reader
	Stdout     io.Writer
	// Writer stores the output when RunOptions.Out is set.
	Writer   Writer
	ReadFile func(string) ([]byte, error)
	OpenDB   func(ctx context.Context, dsn string) (*sql.DB, error)
	Hooks    Hooks
	// Cache, when set, reuses parse results for inputs with identical bytes.
	Cache *cache.Memory[ParseResult]
}

// ParseResult is what parsing one buffer produced. Err is the error returned
// by grammar.Grammar.ParseAll after the statements it did parse.
type ParseResult struct {
	Statements []grammar.Statement
	Err        error
}

// Writer writes the rendered output to persistent storage.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// Pipeline orchestrates configuration loading, parsing, checking and output.
type Pipeline struct {
	Env Environment
}

// RunOptions configures a pipeline execution. Zero values defer to the
// configuration file.
type RunOptions struct {
	ConfigPath string
	// RequireConfig makes a missing configuration file an error.
	RequireConfig bool
	Strict        bool
	Format        config.Format
	SQLiteDSN     string
	Out           string
	// Files overrides the configured inputs. Stdin reads standard input.
	Files []string
}

// FileResult holds what one input produced.
type FileResult struct {
	Path        string
	Statements  []grammar.Statement
	Diagnostics []diagnostics.Diagnostic
}

// Summary captures everything collected during a run.
type Summary struct {
	Plan        config.JobPlan
	Files       []FileResult
	Diagnostics []diagnostics.Diagnostic
	Replay      bind.ReplayStats
	Replayed    bool
}

// DiagnosticsError indicates that the run failed because of reported
// diagnostics. Diagnostic is the first failing one.
type DiagnosticsError struct {
	Diagnostic diagnostics.Diagnostic
	Count      int
	Cause      error
}

func (e *DiagnosticsError) Error() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s (and %d more)", e.Diagnostic.Error(), e.Count-1)
	}
	return e.Diagnostic.Error()
}

func (e *DiagnosticsError) Unwrap() error {
	return e.Cause
}

// WriteError wraps failures encountered while writing the output.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewOSWriter returns a Writer that performs atomic writes on the local filesystem.
func NewOSWriter() Writer {
	return &osWriter{perm: 0o644}
}

type osWriter struct {
	perm fs.FileMode
}

func (w *osWriter) WriteFile(path string, data []byte) error {
	if path == "" {
		return errors.New("pipeline: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".sqlast-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
		_ = tmp.Close()
	}()
	if err := tmp.Chmod(w.perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

// OpenSQLite opens dsn with the modernc.org/sqlite driver and checks the connection.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Run executes the pipeline according to the provided options. The returned
// Summary is filled in as far as the run got, also on error.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (summary Summary, err error) {
	logger := p.Env.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}
	hooks := p.Env.Hooks

	var configDiags []diagnostics.Diagnostic
	defer func() {
		summary.Diagnostics = configDiags
		for _, f := range summary.Files {
			summary.Diagnostics = append(summary.Diagnostics, f.Diagnostics...)
		}
		if hooks.AfterRun != nil {
			if hookErr := hooks.AfterRun(ctx, summary); hookErr != nil && err == nil {
				err = hookErr
			}
		}
	}()

	plan, configDiags, err := p.loadPlan(opts)
	if err != nil {
		return summary, err
	}
	summary.Plan = plan
	for _, w := range configDiags {
		logger.Warn("configuration warning", "message", w.Message)
	}

	paths := opts.Files
	if len(paths) == 0 {
		paths = plan.Inputs
	}
	if len(paths) == 0 {
		paths = []string{Stdin}
	}
	if hooks.BeforeParse != nil {
		if err := hooks.BeforeParse(ctx, paths); err != nil {
			return summary, err
		}
	}

	g := grammar.New(grammar.WithKeywords(plan.ExtraKeywords...), grammar.WithMaxInputBytes(plan.MaxInputBytes))
	results := make([]FileResult, len(paths))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(plan.Workers, 1))
	for i, path := range paths {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			results[i] = p.parseInput(g, plan, path, logger)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return summary, err
	}
	summary.Files = results

	if hooks.AfterParse != nil {
		if err := hooks.AfterParse(ctx, results); err != nil {
			return summary, err
		}
	}

	out, err := Encode(plan.Format, results)
	if err != nil {
		return summary, fmt.Errorf("encode output: %w", err)
	}
	if hooks.BeforeWrite != nil {
		if err := hooks.BeforeWrite(ctx, out); err != nil {
			return summary, err
		}
	}
	if err := p.write(opts.Out, out); err != nil {
		return summary, err
	}

	if failure, count := firstFailure(configDiags, results, plan.Strict); count > 0 {
		return summary, &DiagnosticsError{Diagnostic: failure, Count: count}
	}

	dsn := plan.SQLiteDSN
	if opts.SQLiteDSN != "" {
		dsn = opts.SQLiteDSN
	}
	if dsn == "" {
		return summary, nil
	}
	stats, err := p.replay(ctx, dsn, results)
	summary.Replay, summary.Replayed = stats, err == nil
	if err != nil {
		return summary, fmt.Errorf("replay: %w", err)
	}
	logger.Info("replayed statements", "tables", stats.Tables, "rows", stats.Rows)
	if hooks.AfterReplay != nil {
		if err := hooks.AfterReplay(ctx, stats); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// loadPlan loads the configuration and applies the command-line overrides.
// Config warnings come back as diagnostics.
func (p *Pipeline) loadPlan(opts RunOptions) (config.JobPlan, []diagnostics.Diagnostic, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath
	}
	configErr := func(err error) error {
		d := diagnostics.Error(err.Error()).
			WithSource("config").
			AtLocation(diagnostics.Location{Path: configPath, Line: 1, Column: 1}).
			Build()
		return &DiagnosticsError{Diagnostic: d, Count: 1, Cause: err}
	}

	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		return config.JobPlan{}, nil, configErr(fmt.Errorf("resolve config path: %w", err))
	}

	loadOpts := config.LoadOptions{Strict: opts.Strict, Optional: !opts.RequireConfig}
	if p.Env.FSResolver != nil {
		resolver, err := p.Env.FSResolver(filepath.Dir(absConfigPath))
		if err != nil {
			return config.JobPlan{}, nil, configErr(fmt.Errorf("resolve filesystem: %w", err))
		}
		loadOpts.Resolver = &resolver
	}

	res, err := config.Load(absConfigPath, loadOpts)
	if err != nil {
		return config.JobPlan{}, nil, configErr(err)
	}

	var warnings []diagnostics.Diagnostic
	for _, w := range res.Warnings {
		warnings = append(warnings, diagnostics.Warning(w).
			WithCode(diagnostics.WarnUnknownConfig).
			WithSource("config").
			AtLocation(diagnostics.Location{Path: absConfigPath, Line: 1, Column: 1}).
			Build())
	}

	plan := res.Plan
	if opts.Strict {
		plan.Strict = true
	}
	if opts.Format != "" {
		plan.Format = opts.Format
	}
	return plan, warnings, nil
}

func (p *Pipeline) parseInput(g *grammar.Grammar, plan config.JobPlan, path string, logger logging.Logger) FileResult {
	start := time.Now()
	res := FileResult{Path: path}
	if path == Stdin {
		res.Path = stdinLabel
	}

	src, err := p.read(path, plan.MaxInputBytes)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, diagnostics.Errorf("read input: %v", err).
			WithCode(diagnostics.ErrReadInput).
			WithSource("pipeline").
			AtLocation(diagnostics.Location{Path: res.Path}).
			Build())
		logger.Error("read input", "path", res.Path, "err", err)
		return res
	}

	parsed, cached := p.parse(g, plan.MaxInputBytes, src)
	res.Statements = parsed.Statements
	checker := check.New(plan.Check)
	for _, st := range parsed.Statements {
		loc := diagnostics.Location{Path: res.Path, Line: st.Line, Column: st.Column, Offset: st.Offset}
		res.Diagnostics = append(res.Diagnostics, checker.Check(st.Command, loc)...)
	}
	if parsed.Err != nil {
		res.Diagnostics = append(res.Diagnostics, diagnostics.FromError(res.Path, src, parsed.Err))
	}

	logger.Debug("parsed input",
		"path", res.Path,
		"cached", cached,
		"statements", len(parsed.Statements),
		"diagnostics", len(res.Diagnostics),
		"duration", time.Since(start))
	return res
}

// parse runs g over src, consulting the cache when one is configured. The
// key covers every grammar setting that can change the result.
func (p *Pipeline) parse(g *grammar.Grammar, limit int, src []byte) (ParseResult, bool) {
	if p.Env.Cache == nil {
		stmts, err := g.ParseAll(src)
		return ParseResult{Statements: stmts, Err: err}, false
	}
	key := cache.Key([]byte(strings.Join(g.Keywords(), " ")), []byte(strconv.Itoa(limit)), src)
	if hit, ok := p.Env.Cache.Get(key); ok {
		return hit, true
	}
	stmts, err := g.ParseAll(src)
	res := ParseResult{Statements: stmts, Err: err}
	p.Env.Cache.Set(key, res)
	return res, false
}

// read loads one input. Standard input is read up to one byte past the
// limit so the grammar can report the overflow.
func (p *Pipeline) read(path string, limit int) ([]byte, error) {
	if path != Stdin {
		readFile := p.Env.ReadFile
		if readFile == nil {
			readFile = os.ReadFile
		}
		return readFile(filepath.Clean(path))
	}
	if p.Env.Stdin == nil {
		return nil, errors.New("no standard input available")
	}
	r := p.Env.Stdin
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	return io.ReadAll(r)
}

func (p *Pipeline) write(outPath string, data []byte) error {
	if outPath == "" {
		stdout := p.Env.Stdout
		if stdout == nil {
			stdout = io.Discard
		}
		if _, err := stdout.Write(data); err != nil {
			return &WriteError{Path: stdoutLabel, Err: err}
		}
		return nil
	}

	same, err := fileMatches(outPath, data)
	if err != nil {
		return &WriteError{Path: outPath, Err: err}
	}
	if same {
		return nil
	}
	writer := p.Env.Writer
	if writer == nil {
		writer = NewOSWriter()
	}
	if err := writer.WriteFile(outPath, data); err != nil {
		return &WriteError{Path: outPath, Err: err}
	}
	return nil
}

// replay executes every parsed statement, in input order, inside one
// transaction so a failure leaves the database untouched.
func (p *Pipeline) replay(ctx context.Context, dsn string, results []FileResult) (bind.ReplayStats, error) {
	open := p.Env.OpenDB
	if open == nil {
		open = OpenSQLite
	}
	db, err := open(ctx, dsn)
	if err != nil {
		return bind.ReplayStats{}, fmt.Errorf("open %s: %w", dsn, err)
	}
	defer func() { _ = db.Close() }()

	var cmds []ast.Command
	for _, r := range results {
		for _, st := range r.Statements {
			cmds = append(cmds, st.Command)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return bind.ReplayStats{}, err
	}
	stats, err := bind.New().Replay(ctx, tx, cmds)
	if err != nil {
		_ = tx.Rollback()
		return stats, err
	}
	return stats, tx.Commit()
}

// firstFailure returns the first error diagnostic, or in strict mode the
// first warning, together with the number of failing diagnostics.
func firstFailure(configDiags []diagnostics.Diagnostic, results []FileResult, strict bool) (diagnostics.Diagnostic, int) {
	var (
		first diagnostics.Diagnostic
		count int
	)
	consider := func(ds []diagnostics.Diagnostic) {
		for _, d := range ds {
			if d.IsError() || (strict && d.IsWarning()) {
				if count == 0 {
					first = d
				}
				count++
			}
		}
	}
	consider(configDiags)
	for _, r := range results {
		consider(r.Diagnostics)
	}
	return first, count
}

func fileMatches(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(existing, content), nil
}
