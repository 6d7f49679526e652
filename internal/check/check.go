// Package check runs semantic checks over parsed statements: things the
// grammar accepts but a database would reject or silently mangle.
package check

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/electwix/sqlast/internal/ast"
	"github.com/electwix/sqlast/internal/diagnostics"
)

// Options selects which checks run. Duplicate column names are always reported.
type Options struct {
	// InsertArity reports INSERT rows whose width differs from the column list.
	InsertArity bool
	// DefaultTypes reports DEFAULT values and inserted values that do not fit
	// the declared column type.
	DefaultTypes bool
}

// DefaultOptions enables every check.
func DefaultOptions() Options {
	return Options{InsertArity: true, DefaultTypes: true}
}

// Checker checks the statements of one input in order. Tables created earlier
// in the input are remembered so later INSERTs can be checked against them.
// A Checker is not safe for concurrent use.
type Checker struct {
	opts   Options
	tables map[string]ast.CreateTable
}

// New creates a Checker.
func New(opts Options) *Checker {
	return &Checker{opts: opts, tables: make(map[string]ast.CreateTable)}
}

// Table returns a table created by an earlier CREATE TABLE, matched case-insensitively.
func (c *Checker) Table(t ast.Table) (ast.CreateTable, bool) {
	ct, ok := c.tables[tableKey(t)]
	return ct, ok
}

// Check inspects one command located at loc and returns its findings.
func (c *Checker) Check(cmd ast.Command, loc diagnostics.Location) []diagnostics.Diagnostic {
	r := reporter{loc: loc}
	switch {
	case cmd.CreateTable != nil:
		c.checkCreate(&r, *cmd.CreateTable)
	case cmd.Insert != nil:
		c.checkInsert(&r, *cmd.Insert)
	}
	return r.diags
}

func (c *Checker) checkCreate(r *reporter, stmt ast.CreateTable) {
	seen := make(map[string]bool, len(stmt.Fields))
	for _, f := range stmt.Fields {
		key := strings.ToLower(f.Column.Name)
		if seen[key] {
			r.add(diagnostics.Errorf("duplicate column %q in table %s", f.Column.Name, stmt.Table.QualifiedName()).
				WithCode(diagnostics.ErrDuplicateColumn))
		}
		seen[key] = true

		defaults := f.Defaults()
		if len(defaults) > 1 {
			r.add(diagnostics.Warningf("column %q declares DEFAULT %d times", f.Column.Name, len(defaults)).
				WithCode(diagnostics.WarnRepeatedDefault).
				WithNote("only one DEFAULT is kept by most databases"))
		}
		if !c.opts.DefaultTypes {
			continue
		}
		for _, lit := range defaults {
			if lit.Kind == ast.LiteralNull && f.Has(ast.ConstraintNotNull) {
				r.add(diagnostics.Warningf("column %q is NOT NULL but defaults to NULL", f.Column.Name).
					WithCode(diagnostics.WarnTypeMismatch))
				continue
			}
			if reason := Fits(f.Type, lit); reason != "" {
				r.add(diagnostics.Warningf("DEFAULT %s does not fit column %q %s: %s", lit, f.Column.Name, f.Type, reason).
					WithCode(diagnostics.WarnTypeMismatch))
			}
		}
	}
	c.tables[tableKey(stmt.Table)] = stmt
}

func (c *Checker) checkInsert(r *reporter, stmt ast.InsertTable) {
	seen := make(map[string]bool, len(stmt.Fields))
	for _, f := range stmt.Fields {
		key := strings.ToLower(f.Name)
		if seen[key] {
			r.add(diagnostics.Errorf("column %q listed twice in INSERT into %s", f.Name, stmt.Table.QualifiedName()).
				WithCode(diagnostics.ErrDuplicateColumn))
		}
		seen[key] = true
	}

	table, known := c.Table(stmt.Table)
	columns := insertColumns(stmt, table, known)

	if c.opts.InsertArity {
		want, source := len(stmt.Fields), "the column list"
		switch {
		case len(stmt.Fields) > 0:
		case known:
			want, source = len(table.Fields), "table "+table.Table.QualifiedName()
		case len(stmt.Values) > 0:
			want, source = len(stmt.Values[0]), "the first row"
		}
		for i, row := range stmt.Values {
			if len(row) != want {
				r.add(diagnostics.Errorf("row %d has %d values, %s has %d", i+1, len(row), source, want).
					WithCode(diagnostics.ErrArity))
			}
		}
	}

	if !c.opts.DefaultTypes || columns == nil {
		return
	}
	for i, row := range stmt.Values {
		for j, lit := range row {
			if j >= len(columns) || columns[j] == nil {
				continue
			}
			col := columns[j]
			if lit.Kind == ast.LiteralNull {
				if col.Has(ast.ConstraintNotNull) {
					r.add(diagnostics.Warningf("row %d inserts NULL into NOT NULL column %q", i+1, col.Column.Name).
						WithCode(diagnostics.WarnTypeMismatch))
				}
				continue
			}
			if reason := Fits(col.Type, lit); reason != "" {
				r.add(diagnostics.Warningf("row %d value %s does not fit column %q %s: %s", i+1, lit, col.Column.Name, col.Type, reason).
					WithCode(diagnostics.WarnTypeMismatch))
			}
		}
	}
}

// insertColumns lines up each value position with its column definition when
// the target table is known. Unknown names map to nil.
func insertColumns(stmt ast.InsertTable, table ast.CreateTable, known bool) []*ast.ColumnSpecification {
	if !known {
		return nil
	}
	byName := make(map[string]*ast.ColumnSpecification, len(table.Fields))
	for i := range table.Fields {
		byName[strings.ToLower(table.Fields[i].Column.Name)] = &table.Fields[i]
	}
	if len(stmt.Fields) == 0 {
		out := make([]*ast.ColumnSpecification, len(table.Fields))
		for i := range table.Fields {
			out[i] = &table.Fields[i]
		}
		return out
	}
	out := make([]*ast.ColumnSpecification, len(stmt.Fields))
	for i, f := range stmt.Fields {
		out[i] = byName[strings.ToLower(f.Name)]
	}
	return out
}

func tableKey(t ast.Table) string {
	return strings.ToLower(t.QualifiedName())
}

type reporter struct {
	loc   diagnostics.Location
	diags []diagnostics.Diagnostic
}

func (r *reporter) add(b *diagnostics.Builder) {
	r.diags = append(r.diags, b.AtLocation(r.loc).WithSource("check").Build())
}

// Fits reports why lit cannot be stored in a column of type typ, or "" when
// it can. NULL always fits; nullability is checked separately.
func Fits(typ ast.SQLType, lit ast.Literal) string {
	if lit.Kind == ast.LiteralNull {
		return ""
	}
	switch typ.Kind {
	case ast.TypeInt:
		return fitsInteger(lit, false)
	case ast.TypeUnsignedInt:
		return fitsInteger(lit, true)
	case ast.TypeFloat, ast.TypeReal:
		if !lit.IsNumeric() {
			return "not a number"
		}
	case ast.TypeChar, ast.TypeVarChar:
		if lit.Kind != ast.LiteralString {
			return "not a string"
		}
		if n := utf8.RuneCountInString(lit.Text); n > int(typ.Width) {
			return fmt.Sprintf("%d characters exceed length %d", n, typ.Width)
		}
	case ast.TypeText:
		if lit.Kind != ast.LiteralString {
			return "not a string"
		}
	case ast.TypeBool:
		return fitsBool(lit)
	case ast.TypeBlob:
		if lit.Kind != ast.LiteralString && lit.Kind != ast.LiteralBlob {
			return "not a string or blob"
		}
	case ast.TypeUUID:
		if lit.Kind != ast.LiteralString {
			return "not a string"
		}
		if _, err := uuid.Parse(lit.Text); err != nil {
			return "not a UUID"
		}
	case ast.TypeDate:
		return fitsTime(lit, ast.LiteralCurrentDate, time.DateOnly)
	case ast.TypeDateTime, ast.TypeTimestamp:
		return fitsTime(lit, ast.LiteralCurrentTimestamp, time.DateTime, time.RFC3339)
	case ast.TypeEnum:
		return fitsEnum(typ, lit)
	}
	return ""
}

func fitsInteger(lit ast.Literal, unsigned bool) string {
	d, ok := lit.Decimal()
	if !ok {
		return "not a number"
	}
	if !d.IsInteger() {
		return "has a fractional part"
	}
	if unsigned && d.IsNegative() {
		return "negative value for an unsigned column"
	}
	if !unsigned && lit.Kind == ast.LiteralUnsignedInteger && lit.Unsigned > math.MaxInt64 {
		return "exceeds the signed 64-bit range"
	}
	return ""
}

func fitsBool(lit ast.Literal) string {
	switch lit.Kind {
	case ast.LiteralInteger:
		if lit.Integer == 0 || lit.Integer == 1 {
			return ""
		}
	case ast.LiteralString:
		switch strings.ToLower(lit.Text) {
		case "true", "false":
			return ""
		}
	}
	return "not 0, 1, 'true' or 'false'"
}

func fitsTime(lit ast.Literal, current ast.LiteralKind, layouts ...string) string {
	if lit.Kind == current {
		return ""
	}
	if lit.Kind != ast.LiteralString {
		return "not a date or time string"
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, lit.Text); err == nil {
			return ""
		}
	}
	return fmt.Sprintf("%q does not match %s", lit.Text, strings.Join(layouts, " or "))
}

func fitsEnum(typ ast.SQLType, lit ast.Literal) string {
	if lit.Kind != ast.LiteralString {
		return "not a string"
	}
	for _, v := range typ.Values {
		if v.Kind == ast.LiteralString && v.Text == lit.Text {
			return ""
		}
	}
	return fmt.Sprintf("%q is not one of the enum values", lit.Text)
}
