// Package bind converts parsed literals into database/sql arguments.
//
// Numeric literals keep their exact value through pgtype.Numeric, and the
// CURRENT_* keywords are resolved against the Binder's clock when a row is
// bound, not when it was parsed.
package bind

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/electwix/sqlast/internal/ast"
)

// ConversionError reports a literal that cannot be bound to its column type.
type ConversionError struct {
	Column  string
	Type    ast.SQLType
	Literal ast.Literal
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("bind: column %q %s: cannot convert %s: %v", e.Column, e.Type, e.Literal, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Option configures a Binder.
type Option func(*Binder)

// WithClock sets the time source used for CURRENT_TIME, CURRENT_DATE and
// CURRENT_TIMESTAMP.
func WithClock(now func() time.Time) Option {
	return func(b *Binder) {
		b.now = now
	}
}

// Binder converts literals to driver arguments.
type Binder struct {
	now func() time.Time
}

// New creates a Binder using time.Now as its clock.
func New(opts ...Option) *Binder {
	b := &Binder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Value converts a literal without column type information.
func (b *Binder) Value(lit ast.Literal) (any, error) {
	switch lit.Kind {
	case ast.LiteralNull:
		return nil, nil
	case ast.LiteralInteger:
		return lit.Integer, nil
	case ast.LiteralUnsignedInteger:
		return pgtype.Numeric{Int: new(big.Int).SetUint64(lit.Unsigned), Valid: true}, nil
	case ast.LiteralFixedPoint:
		d, ok := lit.Decimal()
		if !ok {
			return nil, errors.New("bind: fixed-point literal without value")
		}
		return numeric(d), nil
	case ast.LiteralString:
		return lit.Text, nil
	case ast.LiteralBlob:
		return append([]byte(nil), lit.Bytes...), nil
	case ast.LiteralCurrentTime:
		now := b.now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return pgtype.Time{Microseconds: now.Sub(midnight).Microseconds(), Valid: true}, nil
	case ast.LiteralCurrentDate:
		now := b.now()
		return pgtype.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), Valid: true}, nil
	case ast.LiteralCurrentTimestamp:
		return pgtype.Timestamp{Time: b.now(), Valid: true}, nil
	default:
		return nil, fmt.Errorf("bind: unknown literal kind %s", lit.Kind)
	}
}

// ValueFor converts a literal headed for a column of type typ. Strings are
// parsed into UUID, date and timestamp values; numbers are narrowed to the
// column's numeric family. Anything else binds as Value would.
func (b *Binder) ValueFor(column string, typ ast.SQLType, lit ast.Literal) (any, error) {
	fail := func(err error) (any, error) {
		return nil, &ConversionError{Column: column, Type: typ, Literal: lit, Err: err}
	}
	switch {
	case lit.Kind == ast.LiteralNull:
		return nil, nil
	case typ.Kind == ast.TypeBool:
		if v, ok := boolValue(lit); ok {
			return pgtype.Bool{Bool: v, Valid: true}, nil
		}
	case typ.Kind == ast.TypeUUID && lit.Kind == ast.LiteralString:
		id, err := uuid.Parse(lit.Text)
		if err != nil {
			return fail(err)
		}
		return id, nil
	case typ.Kind == ast.TypeDate && lit.Kind == ast.LiteralString:
		t, err := time.Parse(time.DateOnly, lit.Text)
		if err != nil {
			return fail(err)
		}
		return pgtype.Date{Time: t, Valid: true}, nil
	case (typ.Kind == ast.TypeDateTime || typ.Kind == ast.TypeTimestamp) && lit.Kind == ast.LiteralString:
		t, err := parseTimestamp(lit.Text)
		if err != nil {
			return fail(err)
		}
		return pgtype.Timestamp{Time: t, Valid: true}, nil
	case typ.Kind == ast.TypeInt && lit.Kind == ast.LiteralFixedPoint:
		d, _ := lit.Decimal()
		if !d.IsInteger() {
			return fail(errors.New("fractional value for an integer column"))
		}
		if !d.BigInt().IsInt64() {
			return fail(errors.New("value exceeds 64 bits"))
		}
		return d.IntPart(), nil
	case typ.Kind == ast.TypeFloat || typ.Kind == ast.TypeReal:
		if d, ok := lit.Decimal(); ok {
			return d.InexactFloat64(), nil
		}
	}
	return b.Value(lit)
}

// Row binds one INSERT row. types holds the column type for each position,
// or nil where the column is unknown.
func (b *Binder) Row(names []string, types []*ast.SQLType, row []ast.Literal) ([]any, error) {
	args := make([]any, len(row))
	for i, lit := range row {
		var (
			v   any
			err error
		)
		if i < len(types) && types[i] != nil {
			name := ""
			if i < len(names) {
				name = names[i]
			}
			v, err = b.ValueFor(name, *types[i], lit)
		} else {
			v, err = b.Value(lit)
		}
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Rows binds every row of stmt. table, when non-nil, supplies column types,
// matched by name when stmt lists its columns and by position otherwise.
func (b *Binder) Rows(stmt ast.InsertTable, table *ast.CreateTable) ([][]any, error) {
	names, types := columnTypes(stmt, table)
	out := make([][]any, 0, len(stmt.Values))
	for i, row := range stmt.Values {
		args, err := b.Row(names, types, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, args)
	}
	return out, nil
}

func columnTypes(stmt ast.InsertTable, table *ast.CreateTable) ([]string, []*ast.SQLType) {
	if len(stmt.Fields) == 0 {
		if table == nil {
			return nil, nil
		}
		names := make([]string, len(table.Fields))
		types := make([]*ast.SQLType, len(table.Fields))
		for i := range table.Fields {
			names[i] = table.Fields[i].Column.Name
			types[i] = &table.Fields[i].Type
		}
		return names, types
	}

	names := make([]string, len(stmt.Fields))
	types := make([]*ast.SQLType, len(stmt.Fields))
	for i, f := range stmt.Fields {
		names[i] = f.Name
		if table == nil {
			continue
		}
		for j := range table.Fields {
			if strings.EqualFold(table.Fields[j].Column.Name, f.Name) {
				types[i] = &table.Fields[j].Type
				break
			}
		}
	}
	return names, types
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func boolValue(lit ast.Literal) (bool, bool) {
	switch lit.Kind {
	case ast.LiteralInteger:
		switch lit.Integer {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	case ast.LiteralString:
		switch strings.ToLower(lit.Text) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.DateTime, s)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339, s); rfcErr == nil {
		return t, nil
	}
	return time.Time{}, err
}
