// Package render turns ast statements back into SQL text.
//
// The Canonical dialect writes exactly what the grammar reads: parsing the
// output of Render yields the statement that was rendered. The SQLite dialect
// maps types and constraints onto what SQLite accepts so parsed schemas and
// rows can be replayed against a real database.
package render

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/electwix/sqlast/internal/ast"
	"github.com/electwix/sqlast/internal/grammar"
)

// ErrUnrepresentable reports an AST value that has no SQL form in the chosen dialect.
var ErrUnrepresentable = errors.New("render: value cannot be written as SQL")

// Dialect selects the SQL flavour written by a Renderer.
type Dialect int

const (
	// Canonical is the grammar's own dialect.
	Canonical Dialect = iota
	// SQLite targets SQLite's type affinities and quoting rules.
	SQLite
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case Canonical:
		return "canonical"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// Renderer writes statements in one dialect.
type Renderer struct {
	dialect  Dialect
	keywords grammar.KeywordSet
}

// WithDialect selects the output dialect.
func WithDialect(d Dialect) Option {
	return func(r *Renderer) {
		r.dialect = d
	}
}

// WithKeywords treats extra words as reserved, so identifiers spelling them
// are quoted. Use the same words the parsing grammar was given.
func WithKeywords(words ...string) Option {
	return func(r *Renderer) {
		r.keywords = grammar.NewKeywordSet(slices.Concat(grammar.DefaultKeywords(), words)...)
	}
}

// New creates a Renderer. The default dialect is Canonical.
func New(opts ...Option) *Renderer {
	r := &Renderer{keywords: grammar.NewKeywordSet(grammar.DefaultKeywords()...)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var canonical = New()

// Render writes cmd in the Canonical dialect.
func Render(cmd ast.Command) (string, error) {
	return canonical.Render(cmd)
}

// Render writes one statement, terminated by a semicolon.
func (r *Renderer) Render(cmd ast.Command) (string, error) {
	switch {
	case cmd.CreateTable != nil:
		return r.CreateTable(*cmd.CreateTable)
	case cmd.Insert != nil:
		return r.Insert(*cmd.Insert)
	default:
		return "", fmt.Errorf("%w: %s statement has no body", ErrUnrepresentable, cmd.Kind)
	}
}

// CreateTable writes a CREATE TABLE statement with one column per line.
func (r *Renderer) CreateTable(stmt ast.CreateTable) (string, error) {
	if len(stmt.Fields) == 0 {
		return "", fmt.Errorf("%w: table %s has no columns", ErrUnrepresentable, stmt.Table.QualifiedName())
	}
	table, err := r.table(stmt.Table, r.dialect == Canonical)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	buf.WriteString("CREATE TABLE ")
	buf.WriteString(table)
	buf.WriteString(" (\n")
	for i, f := range stmt.Fields {
		if i > 0 {
			buf.WriteString(",\n")
		}
		def, err := r.columnDef(f)
		if err != nil {
			return "", err
		}
		buf.WriteString("    ")
		buf.WriteString(def)
	}
	buf.WriteString("\n);")
	return buf.String(), nil
}

// Insert writes an INSERT statement on a single line.
func (r *Renderer) Insert(stmt ast.InsertTable) (string, error) {
	if len(stmt.Values) == 0 {
		return "", fmt.Errorf("%w: INSERT into %s has no rows", ErrUnrepresentable, stmt.Table.QualifiedName())
	}
	prefix, err := r.insertPrefix(stmt)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	buf.WriteString(prefix)
	buf.WriteString(" VALUES ")
	for i, row := range stmt.Values {
		if len(row) == 0 {
			return "", fmt.Errorf("%w: row %d is empty", ErrUnrepresentable, i+1)
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		values := make([]string, 0, len(row))
		for _, lit := range row {
			v, err := r.Literal(lit)
			if err != nil {
				return "", err
			}
			values = append(values, v)
		}
		buf.WriteString("(")
		buf.WriteString(strings.Join(values, ", "))
		buf.WriteString(")")
	}
	buf.WriteString(";")
	return buf.String(), nil
}

// Parameterized writes stmt's INSERT prefix followed by a single row of width
// "?" placeholders, for executing rows one at a time with bound arguments.
func (r *Renderer) Parameterized(stmt ast.InsertTable, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("%w: INSERT with %d placeholders", ErrUnrepresentable, width)
	}
	prefix, err := r.insertPrefix(stmt)
	if err != nil {
		return "", err
	}
	return prefix + " VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ");", nil
}

// insertPrefix writes INSERT INTO table and the optional column list.
func (r *Renderer) insertPrefix(stmt ast.InsertTable) (string, error) {
	table, err := r.table(stmt.Table, r.dialect == Canonical)
	if err != nil {
		return "", err
	}
	if len(stmt.Fields) == 0 {
		return "INSERT INTO " + table, nil
	}
	names := make([]string, 0, len(stmt.Fields))
	for _, f := range stmt.Fields {
		name, err := r.ident(f.Name)
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	return "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ")", nil
}

func (r *Renderer) table(t ast.Table, withAlias bool) (string, error) {
	name, err := r.ident(t.Name)
	if err != nil {
		return "", err
	}
	if t.Schema != nil {
		schema, err := r.ident(*t.Schema)
		if err != nil {
			return "", err
		}
		name = schema + "." + name
	}
	if withAlias && t.Alias != nil {
		alias, err := r.ident(*t.Alias)
		if err != nil {
			return "", err
		}
		name += " AS " + alias
	}
	return name, nil
}

func (r *Renderer) columnDef(f ast.ColumnSpecification) (string, error) {
	name, err := r.ident(f.Column.Name)
	if err != nil {
		return "", err
	}
	typ, err := r.Type(f.Type)
	if err != nil {
		return "", err
	}
	parts := []string{name, typ}

	constraints := f.Constraints
	if r.dialect == SQLite {
		constraints = sqliteConstraints(constraints)
	}
	for _, c := range constraints {
		switch c.Kind {
		case ast.ConstraintDefault:
			lit := ast.Null()
			if c.Default != nil {
				lit = *c.Default
			}
			v, err := r.Literal(lit)
			if err != nil {
				return "", err
			}
			parts = append(parts, "DEFAULT "+v)
		case ast.ConstraintNotNull, ast.ConstraintAutoIncrement, ast.ConstraintPrimaryKey, ast.ConstraintUnique:
			parts = append(parts, c.String())
		default:
			return "", fmt.Errorf("%w: %s constraint on column %q", ErrUnrepresentable, c.Kind, f.Column.Name)
		}
	}
	return strings.Join(parts, " "), nil
}

// sqliteConstraints drops AUTO_INCREMENT, which SQLite spells differently and
// only allows on INTEGER PRIMARY KEY, and keeps the last DEFAULT only.
func sqliteConstraints(in []ast.ColumnConstraint) []ast.ColumnConstraint {
	lastDefault := -1
	for i, c := range in {
		if c.Kind == ast.ConstraintDefault {
			lastDefault = i
		}
	}
	out := make([]ast.ColumnConstraint, 0, len(in))
	for i, c := range in {
		switch {
		case c.Kind == ast.ConstraintAutoIncrement:
		case c.Kind == ast.ConstraintDefault && i != lastDefault:
		default:
			out = append(out, c)
		}
	}
	return out
}

// Type writes a column type.
func (r *Renderer) Type(t ast.SQLType) (string, error) {
	if t.Kind <= ast.TypeInvalid || t.Kind > ast.TypeEnum {
		return "", fmt.Errorf("%w: type %s", ErrUnrepresentable, t.Kind)
	}
	if r.dialect == SQLite {
		return sqliteColumnType(t.Kind), nil
	}
	if t.Kind == ast.TypeEnum {
		if len(t.Values) == 0 {
			return "", fmt.Errorf("%w: ENUM without values", ErrUnrepresentable)
		}
		values := make([]string, 0, len(t.Values))
		for _, v := range t.Values {
			s, err := r.Literal(v)
			if err != nil {
				return "", err
			}
			values = append(values, s)
		}
		return "ENUM(" + strings.Join(values, ", ") + ")", nil
	}
	return t.String(), nil
}

// sqliteColumnType maps a type onto its SQLite affinity.
func sqliteColumnType(kind ast.TypeKind) string {
	switch kind {
	case ast.TypeInt, ast.TypeUnsignedInt:
		return "INTEGER"
	case ast.TypeChar, ast.TypeVarChar, ast.TypeText, ast.TypeUUID, ast.TypeEnum:
		return "TEXT"
	case ast.TypeBlob:
		return "BLOB"
	case ast.TypeReal, ast.TypeFloat:
		return "REAL"
	case ast.TypeBool, ast.TypeDate, ast.TypeDateTime, ast.TypeTimestamp:
		return "NUMERIC"
	default:
		return "TEXT"
	}
}

// Literal writes a literal value.
func (r *Renderer) Literal(lit ast.Literal) (string, error) {
	switch lit.Kind {
	case ast.LiteralNull, ast.LiteralInteger,
		ast.LiteralCurrentTime, ast.LiteralCurrentDate, ast.LiteralCurrentTimestamp:
		return lit.String(), nil
	case ast.LiteralUnsignedInteger:
		if r.dialect == Canonical && lit.Unsigned <= 1<<63-1 {
			return "", fmt.Errorf("%w: unsigned literal %d reads back as a signed integer", ErrUnrepresentable, lit.Unsigned)
		}
		if r.dialect == SQLite {
			// SQLite integers are signed 64-bit; larger values become REAL.
			return strconv.FormatUint(lit.Unsigned, 10) + ".0", nil
		}
		return lit.String(), nil
	case ast.LiteralFixedPoint:
		if lit.Fixed == nil || lit.Fixed.Scale == 0 {
			return "", fmt.Errorf("%w: fixed-point literal without fractional digits", ErrUnrepresentable)
		}
		if digits := len(strconv.FormatUint(lit.Fixed.Fractional, 10)); digits > int(lit.Fixed.Scale) {
			return "", fmt.Errorf("%w: fractional part %d wider than scale %d", ErrUnrepresentable, lit.Fixed.Fractional, lit.Fixed.Scale)
		}
		return lit.String(), nil
	case ast.LiteralString:
		return r.stringLiteral(lit.Text)
	case ast.LiteralBlob:
		return r.blobLiteral(lit.Bytes)
	default:
		return "", fmt.Errorf("%w: literal kind %s", ErrUnrepresentable, lit.Kind)
	}
}

func (r *Renderer) stringLiteral(s string) (string, error) {
	if r.dialect == SQLite {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
	}
	if strings.IndexByte(s, '\'') >= 0 {
		return "", fmt.Errorf("%w: string %q contains a quote", ErrUnrepresentable, s)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: string is not valid UTF-8", ErrUnrepresentable)
	}
	return "'" + s + "'", nil
}

// blobLiteral writes the raw bytes between quotes in the canonical dialect,
// which the grammar reads back as a blob because they are not valid UTF-8.
func (r *Renderer) blobLiteral(b []byte) (string, error) {
	if r.dialect == SQLite {
		return fmt.Sprintf("X'%X'", b), nil
	}
	if utf8.Valid(b) {
		return "", fmt.Errorf("%w: blob holds valid UTF-8 and reads back as a string", ErrUnrepresentable)
	}
	for _, c := range b {
		if c == '\'' {
			return "", fmt.Errorf("%w: blob contains a quote byte", ErrUnrepresentable)
		}
	}
	return "'" + string(b) + "'", nil
}

// ident writes an identifier, quoting it when it is reserved.
func (r *Renderer) ident(name string) (string, error) {
	if r.dialect == SQLite {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrUnrepresentable)
	}
	for i := 0; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			return "", fmt.Errorf("%w: identifier %q", ErrUnrepresentable, name)
		}
	}
	if r.keywords.Contains([]byte(name)) {
		return "[" + name + "]", nil
	}
	return name, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '@' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
