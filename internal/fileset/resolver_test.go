package fileset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

func sqlTree() fstest.MapFS {
	return fstest.MapFS{
		"schema/users.sql":         &fstest.MapFile{Mode: fs.ModePerm},
		"schema/books.sql":         &fstest.MapFile{Mode: fs.ModePerm},
		"schema/legacy/old.sql":    &fstest.MapFile{Mode: fs.ModePerm},
		"schema/legacy/deep/x.sql": &fstest.MapFile{Mode: fs.ModePerm},
		"schema/legacy/notes.txt":  &fstest.MapFile{Mode: fs.ModePerm},
		"seed/001_users.sql":       &fstest.MapFile{Mode: fs.ModePerm},
		"seed/dir.sql/inner.sql":   &fstest.MapFile{Mode: fs.ModePerm},
		"top.sql":                  &fstest.MapFile{Mode: fs.ModePerm},
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "plain glob",
			patterns: []string{"schema/*.sql"},
			want:     []string{"schema/books.sql", "schema/users.sql"},
		},
		{
			name:     "overlapping patterns are de-duplicated",
			patterns: []string{"seed/*.sql", "seed/001_users.sql", "top.sql"},
			want:     []string{"seed/001_users.sql", "top.sql"},
		},
		{
			name:     "recursive below a directory",
			patterns: []string{"schema/**/*.sql"},
			want: []string{
				"schema/books.sql",
				"schema/legacy/deep/x.sql",
				"schema/legacy/old.sql",
				"schema/users.sql",
			},
		},
		{
			name:     "recursive from the root",
			patterns: []string{"**/old.sql"},
			want:     []string{"schema/legacy/old.sql"},
		},
		{
			name:     "directories are skipped",
			patterns: []string{"seed/*"},
			want:     []string{"seed/001_users.sql"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(sqlTree()).Resolve(tt.patterns)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveNoMatches(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(sqlTree()).Resolve([]string{"queries/*.sql", "top.sql", "missing/**/*.sql"})
	var noMatch NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchError, got %T: %v", err, err)
	}
	if !slices.Equal(noMatch.Patterns, []string{"queries/*.sql", "missing/**/*.sql"}) {
		t.Fatalf("unexpected missing patterns: %v", noMatch.Patterns)
	}
}

func TestResolveInvalidPattern(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{"[", "schema/**/["} {
		_, err := NewResolver(sqlTree()).Resolve([]string{pattern})
		var patternErr PatternError
		if !errors.As(err, &patternErr) {
			t.Fatalf("Resolve(%q): expected PatternError, got %T: %v", pattern, err, err)
		}
		if patternErr.Pattern != pattern {
			t.Fatalf("unexpected pattern on error: %q", patternErr.Pattern)
		}
	}
}

func TestResolveNoPatterns(t *testing.T) {
	t.Parallel()

	if _, err := NewResolver(fstest.MapFS{}).Resolve(nil); !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("expected ErrNoPatterns, got %v", err)
	}
	if _, err := (Resolver{}).Resolve([]string{"*.sql"}); err == nil {
		t.Fatalf("expected error from zero Resolver")
	}
}

func TestOSResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "db", "a.sql"), []byte("CREATE TABLE a (x INT);"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := NewOSResolver(dir)
	if err != nil {
		t.Fatalf("NewOSResolver() error = %v", err)
	}
	got, err := r.Resolve([]string{"db/*.sql"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := filepath.Join(dir, "db", "a.sql")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Resolve() = %v, want [%s]", got, want)
	}

	if _, err := NewOSResolver(filepath.Join(dir, "db", "a.sql")); err == nil {
		t.Fatalf("NewOSResolver(file) succeeded")
	}
}
