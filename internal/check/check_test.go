package check

import (
	"slices"
	"testing"

	"github.com/electwix/sqlast/internal/ast"
	"github.com/electwix/sqlast/internal/diagnostics"
	"github.com/electwix/sqlast/internal/grammar"
)

func runChecks(t *testing.T, opts Options, sql string) []diagnostics.Diagnostic {
	t.Helper()
	stmts, err := grammar.New().ParseAll([]byte(sql))
	if err != nil {
		t.Fatalf("ParseAll(%q) error = %v", sql, err)
	}
	c := New(opts)
	var out []diagnostics.Diagnostic
	for _, s := range stmts {
		loc := diagnostics.Location{Path: "test.sql", Line: s.Line, Column: s.Column, Offset: s.Offset}
		out = append(out, c.Check(s.Command, loc)...)
	}
	return out
}

func codes(diags []diagnostics.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "clean create and insert",
			sql: "CREATE TABLE t (id INT NOT NULL, name VARCHAR(5) DEFAULT 'x');\n" +
				"INSERT INTO t VALUES (1, 'ab'), (2, 'cd');",
			want: []string{},
		},
		{
			name: "duplicate column differing in case",
			sql:  "CREATE TABLE t (a INT, A TEXT);",
			want: []string{diagnostics.ErrDuplicateColumn},
		},
		{
			name: "repeated default",
			sql:  "CREATE TABLE t (a INT DEFAULT 1 DEFAULT 2);",
			want: []string{diagnostics.WarnRepeatedDefault},
		},
		{
			name: "default does not fit",
			sql:  "CREATE TABLE t (a INT DEFAULT 'x');",
			want: []string{diagnostics.WarnTypeMismatch},
		},
		{
			name: "null default on not null column",
			sql:  "CREATE TABLE t (a INT NOT NULL DEFAULT NULL);",
			want: []string{diagnostics.WarnTypeMismatch},
		},
		{
			name: "insert field list arity",
			sql:  "INSERT INTO t (a, b) VALUES (1, 2), (3);",
			want: []string{diagnostics.ErrArity},
		},
		{
			name: "insert arity against known table",
			sql:  "CREATE TABLE t (a INT, b INT);\nINSERT INTO t VALUES (1);",
			want: []string{diagnostics.ErrArity},
		},
		{
			name: "insert arity against first row",
			sql:  "INSERT INTO unknown VALUES (1, 2), (3, 4, 5);",
			want: []string{diagnostics.ErrArity},
		},
		{
			name: "duplicate insert field",
			sql:  "INSERT INTO t (a, a) VALUES (1, 2);",
			want: []string{diagnostics.ErrDuplicateColumn},
		},
		{
			name: "insert value mismatch",
			sql:  "CREATE TABLE t (id UUID, n INT);\nINSERT INTO t VALUES ('nope', 1.5);",
			want: []string{diagnostics.WarnTypeMismatch, diagnostics.WarnTypeMismatch},
		},
		{
			name: "insert null into not null",
			sql:  "CREATE TABLE t (id INT NOT NULL);\nINSERT INTO t (id) VALUES (NULL);",
			want: []string{diagnostics.WarnTypeMismatch},
		},
		{
			name: "insert by name matches case-insensitively",
			sql:  "CREATE TABLE s.t (Id INT, note TEXT);\nINSERT INTO S.T (NOTE, ID) VALUES ('x', 2);",
			want: []string{},
		},
		{
			name: "unknown insert column is skipped",
			sql:  "CREATE TABLE t (id INT);\nINSERT INTO t (other) VALUES ('x');",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(runChecks(t, DefaultOptions(), tt.sql))
			if !slices.Equal(got, tt.want) {
				t.Errorf("codes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckOptions(t *testing.T) {
	sql := "CREATE TABLE t (a INT DEFAULT 'x');\nINSERT INTO t VALUES (1, 2);"

	if got := codes(runChecks(t, Options{}, sql)); len(got) != 0 {
		t.Errorf("all checks off: codes = %v, want none", got)
	}
	if got := codes(runChecks(t, Options{InsertArity: true}, sql)); !slices.Equal(got, []string{diagnostics.ErrArity}) {
		t.Errorf("arity only: codes = %v", got)
	}
	if got := codes(runChecks(t, Options{DefaultTypes: true}, sql)); !slices.Equal(got, []string{diagnostics.WarnTypeMismatch}) {
		t.Errorf("types only: codes = %v", got)
	}
}

func TestCheckLocation(t *testing.T) {
	diags := runChecks(t, DefaultOptions(), "CREATE TABLE t (a INT);\n  INSERT INTO t VALUES (1, 2);")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Location.Path != "test.sql" || d.Location.Line != 2 || d.Location.Column != 3 {
		t.Errorf("location = %+v, want test.sql:2:3", d.Location)
	}
	if d.Source != "check" || !d.IsError() {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestCheckerRemembersTables(t *testing.T) {
	c := New(DefaultOptions())
	stmt := ast.CreateTable{
		Table:  ast.Table{Schema: ast.Ptr("Main"), Name: "Users"},
		Fields: []ast.ColumnSpecification{{Column: ast.Column{Name: "id"}, Type: ast.IntType(32)}},
	}
	c.Check(ast.NewCreateTableCommand(stmt), diagnostics.Location{})

	if _, ok := c.Table(ast.Table{Schema: ast.Ptr("main"), Name: "users"}); !ok {
		t.Fatalf("Table(main.users) not found")
	}
	if _, ok := c.Table(ast.Table{Name: "users"}); ok {
		t.Fatalf("Table(users) found without schema")
	}
}

func TestFits(t *testing.T) {
	tests := []struct {
		name string
		typ  ast.SQLType
		lit  ast.Literal
		ok   bool
	}{
		{"null fits anything", ast.TypeOf(ast.TypeUUID), ast.Null(), true},
		{"int", ast.IntType(32), ast.Int64(-4), true},
		{"int from whole fixed", ast.IntType(32), ast.Fixed(false, 3, 0, 1), true},
		{"int fraction", ast.IntType(32), ast.Fixed(false, 3, 5, 1), false},
		{"int huge unsigned", ast.IntType(32), ast.Uint64(1 << 63), false},
		{"int string", ast.IntType(32), ast.Str("1"), false},
		{"unsigned negative", ast.UnsignedIntType(32), ast.Int64(-1), false},
		{"unsigned huge", ast.UnsignedIntType(32), ast.Uint64(1 << 63), true},
		{"float int", ast.TypeOf(ast.TypeFloat), ast.Int64(1), true},
		{"real string", ast.TypeOf(ast.TypeReal), ast.Str("1"), false},
		{"varchar fits runes", ast.VarCharType(2), ast.Str("éé"), true},
		{"varchar too long", ast.VarCharType(2), ast.Str("abc"), false},
		{"char number", ast.CharType(4), ast.Int64(1), false},
		{"text", ast.TypeOf(ast.TypeText), ast.Str(""), true},
		{"bool one", ast.TypeOf(ast.TypeBool), ast.Int64(1), true},
		{"bool two", ast.TypeOf(ast.TypeBool), ast.Int64(2), false},
		{"bool word", ast.TypeOf(ast.TypeBool), ast.Str("TRUE"), true},
		{"blob bytes", ast.TypeOf(ast.TypeBlob), ast.Blob([]byte{0xff}), true},
		{"blob int", ast.TypeOf(ast.TypeBlob), ast.Int64(1), false},
		{"uuid", ast.TypeOf(ast.TypeUUID), ast.Str("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), true},
		{"uuid bad", ast.TypeOf(ast.TypeUUID), ast.Str("6ba7b810"), false},
		{"date", ast.TypeOf(ast.TypeDate), ast.Str("2024-02-29"), true},
		{"date bad", ast.TypeOf(ast.TypeDate), ast.Str("2023-02-29"), false},
		{"date keyword", ast.TypeOf(ast.TypeDate), ast.Keyword(ast.LiteralCurrentDate), true},
		{"date wrong keyword", ast.TypeOf(ast.TypeDate), ast.Keyword(ast.LiteralCurrentTime), false},
		{"datetime", ast.TypeOf(ast.TypeDateTime), ast.Str("2024-01-02 03:04:05"), true},
		{"timestamp rfc3339", ast.TypeOf(ast.TypeTimestamp), ast.Str("2024-01-02T03:04:05Z"), true},
		{"timestamp keyword", ast.TypeOf(ast.TypeTimestamp), ast.Keyword(ast.LiteralCurrentTimestamp), true},
		{"enum member", ast.EnumType(ast.Str("a"), ast.Str("b")), ast.Str("b"), true},
		{"enum other", ast.EnumType(ast.Str("a")), ast.Str("c"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := Fits(tt.typ, tt.lit)
			if (reason == "") != tt.ok {
				t.Errorf("Fits(%s, %s) = %q, want ok=%v", tt.typ, tt.lit, reason, tt.ok)
			}
		})
	}
}
