// Package fileset expands input patterns into a sorted list of SQL files.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Resolver expands glob patterns against an fs.FS. Besides the fs.Glob
// syntax a pattern may contain one "**/" segment, which matches any number of
// directories.
type Resolver struct {
	fsys fs.FS
	join func(name string) string
}

// ErrNoPatterns indicates that Resolve was invoked without any patterns.
var ErrNoPatterns = errors.New("fileset: no patterns provided")

// PatternError wraps syntax issues reported while evaluating a glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e PatternError) Unwrap() error { return e.Err }

// NoMatchError lists the patterns that matched no files.
type NoMatchError struct {
	Patterns []string
}

// Error implements the error interface.
func (e NoMatchError) Error() string {
	return "patterns matched no files: " + strings.Join(e.Patterns, ", ")
}

// NewResolver returns a Resolver that reports matches by their fs.FS names.
func NewResolver(fsys fs.FS) Resolver {
	return Resolver{fsys: fsys, join: func(name string) string { return name }}
}

// NewOSResolver returns a Resolver rooted at base that reports absolute paths.
func NewOSResolver(base string) (Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return Resolver{}, fmt.Errorf("resolve base %q: %w", base, err)
	}
	info, err := os.Stat(absBase)
	if err != nil {
		return Resolver{}, fmt.Errorf("stat base %q: %w", absBase, err)
	}
	if !info.IsDir() {
		return Resolver{}, fmt.Errorf("base %q is not a directory", absBase)
	}
	return Resolver{
		fsys: os.DirFS(absBase),
		join: func(name string) string { return filepath.Join(absBase, filepath.FromSlash(name)) },
	}, nil
}

// Resolve expands every pattern and returns the sorted, de-duplicated regular
// files. Every pattern must match at least one file.
func (r Resolver) Resolve(patterns []string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	var (
		combined []string
		missing  []string
	)
	for _, pattern := range patterns {
		matches, err := r.glob(filepath.ToSlash(pattern))
		if err != nil {
			return nil, PatternError{Pattern: pattern, Err: err}
		}
		if len(matches) == 0 {
			missing = append(missing, pattern)
			continue
		}
		for _, m := range matches {
			combined = append(combined, r.join(m))
		}
	}
	if len(missing) > 0 {
		return nil, NoMatchError{Patterns: missing}
	}

	slices.Sort(combined)
	return slices.Compact(combined), nil
}

func (r Resolver) glob(pattern string) ([]string, error) {
	root, rest, recursive := splitRecursive(pattern)
	if !recursive {
		matches, err := fs.Glob(r.fsys, pattern)
		if err != nil {
			return nil, err
		}
		return r.regularFiles(matches), nil
	}

	if _, err := path.Match(rest, ""); err != nil {
		return nil, err
	}
	var matches []string
	err := fs.WalkDir(r.fsys, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(name, root), "/")
		if root == "." {
			rel = name
		}
		if matchTail(rest, rel) {
			matches = append(matches, name)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return matches, err
}

// splitRecursive splits "dir/**/tail" into ("dir", "tail"). A leading "**/"
// roots the walk at ".".
func splitRecursive(pattern string) (root, rest string, ok bool) {
	if tail, found := strings.CutPrefix(pattern, "**/"); found {
		return ".", tail, true
	}
	if i := strings.Index(pattern, "/**/"); i >= 0 {
		return pattern[:i], pattern[i+len("/**/"):], true
	}
	return "", "", false
}

// matchTail reports whether pattern matches rel or any trailing run of its
// path segments.
func matchTail(pattern, rel string) bool {
	for {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		i := strings.IndexByte(rel, '/')
		if i < 0 {
			return false
		}
		rel = rel[i+1:]
	}
}

func (r Resolver) regularFiles(names []string) []string {
	out := names[:0]
	for _, name := range names {
		info, err := fs.Stat(r.fsys, name)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, name)
	}
	return out
}
